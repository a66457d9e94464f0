package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"schedly/src-server/conflict"
	"schedly/src-server/exception"
	"schedly/src-server/model"
	"schedly/src-server/nlp"
	"schedly/src-server/recurrence"
	"schedly/src-server/timezone"
)

// #region - wire types

func formatUTC(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

type EventRespBody struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	SeriesID      string `json:"seriesId,omitempty"`
	OriginalStart string `json:"originalStart,omitempty"`
	IsException   bool   `json:"isException"`
}

func newEventRespBody(e *model.Event) EventRespBody {
	return EventRespBody{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		Start:         formatUTC(e.Start()),
		End:           formatUTC(e.End()),
		SeriesID:      e.SeriesID,
		OriginalStart: formatUTC(e.OriginalStart()),
		IsException:   e.IsException,
	}
}

func newEventRespBodies(events []*model.Event) []EventRespBody {
	out := make([]EventRespBody, 0, len(events))
	for _, e := range events {
		out = append(out, newEventRespBody(e))
	}
	return out
}

type OccurrenceRespBody struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	OriginalStart string `json:"originalStart"`
	IsException   bool   `json:"isException"`
}

func newOccurrenceRespBodies(occs []recurrence.Occurrence) []OccurrenceRespBody {
	out := make([]OccurrenceRespBody, 0, len(occs))
	for _, occ := range occs {
		out = append(out, OccurrenceRespBody{
			Title:         occ.Title,
			Description:   occ.Description,
			Location:      occ.Location,
			Start:         formatUTC(occ.Start),
			End:           formatUTC(occ.End),
			OriginalStart: formatUTC(occ.OriginalStart),
			IsException:   occ.IsException,
		})
	}
	return out
}

type FieldsRespBody struct {
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	Location         string  `json:"location,omitempty"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	HasDate          bool    `json:"hasDate"`
	HasTime          bool    `json:"hasTime"`
	Timezone         string  `json:"timezone"`
	TimezoneFallback bool    `json:"timezoneFallback"`
	Recurring        bool    `json:"recurring"`
	Frequency        string  `json:"freq,omitempty"`
	RepeatDays       []int   `json:"repeatDays,omitempty"`
	RepeatUntil      *string `json:"repeatUntil,omitempty"`
	RepeatEveryWeeks int     `json:"repeatEveryWeeks,omitempty"`
}

func newFieldsRespBody(f nlp.Fields) FieldsRespBody {
	resp := FieldsRespBody{
		Title:            f.Title,
		Description:      f.Description,
		Location:         f.Location,
		Start:            formatUTC(f.Start),
		End:              formatUTC(f.End),
		HasDate:          f.HasDate,
		HasTime:          f.HasTime,
		Timezone:         f.Timezone,
		TimezoneFallback: f.TimezoneFallback,
		Recurring:        f.Recurring,
	}
	if f.Recurring {
		resp.Frequency = string(f.Frequency)
		resp.RepeatDays = recurrence.WeekdayIndexes(f.RepeatDays)
		resp.RepeatEveryWeeks = f.RepeatEveryWeeks
		if f.RepeatUntil != nil {
			until := f.RepeatUntil.String()
			resp.RepeatUntil = &until
		}
	}
	return resp
}

type IntervalRespBody struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func newIntervalRespBody(i conflict.Interval) IntervalRespBody {
	return IntervalRespBody{ID: i.ID, Title: i.Title, Start: formatUTC(i.Start), End: formatUTC(i.End)}
}

type ConflictRespBody struct {
	Error     string `json:"error"`
	Total     int    `json:"total"`
	Truncated bool   `json:"truncated"`
	Conflicts []struct {
		Candidate IntervalRespBody `json:"candidate"`
		Existing  IntervalRespBody `json:"existing"`
	} `json:"conflicts"`
}

func newConflictRespBody(err *model.ConflictError) ConflictRespBody {
	resp := ConflictRespBody{
		Error:     err.Error(),
		Total:     err.Report.Total,
		Truncated: err.Report.Truncated,
	}
	resp.Conflicts = make([]struct {
		Candidate IntervalRespBody `json:"candidate"`
		Existing  IntervalRespBody `json:"existing"`
	}, len(err.Report.Conflicts))
	for i, c := range err.Report.Conflicts {
		resp.Conflicts[i].Candidate = newIntervalRespBody(c.Candidate)
		resp.Conflicts[i].Existing = newIntervalRespBody(c.Existing)
	}
	return resp
}

type OverrideBody struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}

func (b OverrideBody) override() exception.Override {
	o := exception.Override{
		Title:       b.Title,
		Description: b.Description,
		Location:    b.Location,
	}
	if b.Start != nil {
		start := b.Start.UTC()
		o.Start = &start
	}
	if b.End != nil {
		end := b.End.UTC()
		o.End = &end
	}
	return o
}

type ExceptionRespBody struct {
	SeriesID      string        `json:"seriesId"`
	OriginalStart string        `json:"originalStart"`
	Kind          string        `json:"kind"`
	Override      *OverrideResp `json:"override,omitempty"`
}

type OverrideResp struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Start       string  `json:"start,omitempty"`
	End         string  `json:"end,omitempty"`
}

func newExceptionRespBody(e exception.Exception) ExceptionRespBody {
	resp := ExceptionRespBody{
		SeriesID:      e.SeriesID,
		OriginalStart: formatUTC(e.OriginalStart),
		Kind:          string(e.Kind),
	}
	if e.Kind == exception.KindOverride {
		o := &OverrideResp{
			Title:       e.Override.Title,
			Description: e.Override.Description,
			Location:    e.Override.Location,
		}
		if e.Override.Start != nil {
			o.Start = formatUTC(*e.Override.Start)
		}
		if e.Override.End != nil {
			o.End = formatUTC(*e.Override.End)
		}
		resp.Override = o
	}
	return resp
}

// #endregion

// #region - responding

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("can't encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, body any) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeStoreError maps an error from the store or the core packages to a
// status code.
func writeStoreError(w http.ResponseWriter, err error) {
	var conflictErr *model.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, newConflictRespBody(conflictErr))
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidEvent),
		errors.Is(err, model.ErrEmptySeries),
		errors.Is(err, recurrence.ErrInvalidDescriptor),
		errors.Is(err, exception.ErrInvalid),
		errors.Is(err, timezone.ErrMalformed):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// #endregion
