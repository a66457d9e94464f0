package route

import (
	"net/http"
	"strings"
	"time"

	"schedly/src-server/exception"
	"schedly/src-server/recurrence"
	"schedly/src-server/utils"
)

type CreateSeriesReqBody struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Timezone    string    `json:"tz"`

	Frequency        string `json:"freq"`
	Interval         int    `json:"interval"`
	RepeatEveryWeeks int    `json:"repeatEveryWeeks"`
	RepeatDays       []int  `json:"repeatDays"`
	// YYYY-MM-DD, inclusive
	RepeatUntil string `json:"repeatUntil"`
	// RRule replaces the fields above when set.
	RRule string `json:"rrule"`
}

func (b CreateSeriesReqBody) descriptor(as *utils.AppState) (recurrence.Descriptor, error) {
	tz := strings.TrimSpace(b.Timezone)
	if tz == "" {
		tz = as.Config.GetLocation().String()
	}
	start, end := b.Start.UTC(), b.End.UTC()

	var (
		d   recurrence.Descriptor
		err error
	)
	if strings.TrimSpace(b.RRule) != "" {
		if d, err = recurrence.FromRRule(b.RRule, start, end, tz); err != nil {
			return recurrence.Descriptor{}, err
		}
	} else {
		d = recurrence.Descriptor{Start: start, End: end, Timezone: tz}
		if d.Frequency, err = recurrence.ParseFrequency(b.Frequency); err != nil {
			return recurrence.Descriptor{}, err
		}
		d.Interval = b.Interval
		if d.Interval == 0 && d.Frequency == recurrence.Weekly {
			d.Interval = b.RepeatEveryWeeks
		}
		if d.Weekdays, err = recurrence.WeekdaysFromIndexes(b.RepeatDays); err != nil {
			return recurrence.Descriptor{}, err
		}
		if b.RepeatUntil != "" {
			if d.Until, err = recurrence.ParseDate(b.RepeatUntil); err != nil {
				return recurrence.Descriptor{}, &recurrence.ValidationError{Field: "repeatUntil", Reason: "expected YYYY-MM-DD"}
			}
		}
	}
	d.Title = b.Title
	d.Description = b.Description
	d.Location = b.Location
	return d, nil
}

type CreateSeriesRespBody struct {
	SeriesID         string          `json:"seriesId"`
	RRule            string          `json:"rrule"`
	Timezone         string          `json:"timezone"`
	TimezoneFallback bool            `json:"timezoneFallback"`
	Truncated        bool            `json:"truncated"`
	Events           []EventRespBody `json:"events"`
}

type PreviewReqBody struct {
	CreateSeriesReqBody
	Exceptions []struct {
		OriginalStart time.Time     `json:"originalStart"`
		Kind          string        `json:"kind"`
		Override      *OverrideBody `json:"override"`
	} `json:"exceptions"`
}

type PreviewRespBody struct {
	RRule            string               `json:"rrule"`
	TimezoneFallback bool                 `json:"timezoneFallback"`
	Truncated        bool                 `json:"truncated"`
	Occurrences      []OccurrenceRespBody `json:"occurrences"`
}

// previewSeriesID keys exceptions applied to a series that is never stored.
const previewSeriesID = "preview"

func Series(muxer *http.ServeMux, as *utils.AppState) {
	// materialize and store a whole series, or nothing when anything overlaps
	muxer.HandleFunc("POST /series", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CreateSeriesReqBody
		if !decode(w, r, &reqBody) {
			return
		}
		d, err := reqBody.descriptor(as)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		result, err := as.Store.CreateSeries(r.Context(), d)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, CreateSeriesRespBody{
			SeriesID:         result.Series.ID,
			RRule:            result.Series.RRule,
			Timezone:         result.Series.Timezone,
			TimezoneFallback: result.TimezoneFallback,
			Truncated:        result.Truncated,
			Events:           newEventRespBodies(result.Events),
		})
	})

	// what a series would look like with some exceptions, nothing is stored
	muxer.HandleFunc("POST /series/preview", func(w http.ResponseWriter, r *http.Request) {
		var reqBody PreviewReqBody
		if !decode(w, r, &reqBody) {
			return
		}
		d, err := reqBody.descriptor(as)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		exp, err := recurrence.Expand(d, as.Store.Limits().Expansion)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		for i := range exp.Occurrences {
			exp.Occurrences[i].SeriesID = previewSeriesID
		}

		registry := exception.NewRegistry()
		for _, e := range reqBody.Exceptions {
			kind, err := exception.ParseKind(e.Kind)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			var payload *exception.Override
			if e.Override != nil {
				o := e.Override.override()
				payload = &o
			}
			if _, err := registry.Apply(previewSeriesID, e.OriginalStart, kind, payload); err != nil {
				writeStoreError(w, err)
				return
			}
		}

		rule, err := d.RRule()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PreviewRespBody{
			RRule:            rule,
			TimezoneFallback: exp.TimezoneFallback,
			Truncated:        exp.Truncated,
			Occurrences: newOccurrenceRespBodies(
				exception.Resolve(exp.Occurrences, registry.ForSeries(previewSeriesID)),
			),
		})
	})

	muxer.HandleFunc("GET /series/{id}/exceptions", func(w http.ResponseWriter, r *http.Request) {
		exceptions, err := as.Store.Exceptions(r.Context(), r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respBody := make([]ExceptionRespBody, 0, len(exceptions))
		for _, e := range exceptions {
			respBody = append(respBody, newExceptionRespBody(e))
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	// skip one occurrence by the slot the rule generated
	muxer.HandleFunc("DELETE /series/{id}/occurrences/{originalStart}", func(w http.ResponseWriter, r *http.Request) {
		originalStart, err := time.Parse(time.RFC3339, r.PathValue("originalStart"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid originalStart, expected RFC 3339")
			return
		}
		e, err := as.Store.DeleteOccurrence(r.Context(), r.PathValue("id"), originalStart.UTC())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newExceptionRespBody(e))
	})
}
