package route

import (
	"net/http"
	"time"

	"schedly/src-server/conflict"
	"schedly/src-server/model"
	"schedly/src-server/utils"
)

type CreateEventReqBody struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type NaturalReqBody struct {
	ParseReqBody
	// RequireDateTime refuses texts where no date or no time was found
	// instead of storing them at the defaults.
	RequireDateTime bool `json:"requireDateTime"`
}

type NaturalRespBody struct {
	Fields   FieldsRespBody  `json:"fields"`
	Event    *EventRespBody  `json:"event,omitempty"`
	SeriesID string          `json:"seriesId,omitempty"`
	Events   []EventRespBody `json:"events,omitempty"`
	// Truncated is set when an open-ended rule was cut at the span limit.
	Truncated bool `json:"truncated,omitempty"`
}

type SuggestReqBody struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// create one standalone event
	muxer.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CreateEventReqBody
		if !decode(w, r, &reqBody) {
			return
		}
		event, err := as.Store.CreateEvent(r.Context(), model.EventInput{
			Title:       reqBody.Title,
			Description: reqBody.Description,
			Location:    reqBody.Location,
			Start:       reqBody.Start.UTC(),
			End:         reqBody.End.UTC(),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventRespBody(event))
	})

	// parse free text, then store it as an event or a whole series
	muxer.HandleFunc("POST /events/natural", func(w http.ResponseWriter, r *http.Request) {
		var reqBody NaturalReqBody
		if !decode(w, r, &reqBody) {
			return
		}

		f := as.ParseText(reqBody.Text, reqBody.hint(as), reqBody.now())
		respBody := NaturalRespBody{Fields: newFieldsRespBody(f)}
		if reqBody.RequireDateTime && !(f.HasDate && f.HasTime) {
			writeJSON(w, http.StatusUnprocessableEntity, respBody)
			return
		}

		if f.IsRecurring() {
			result, err := as.Store.CreateSeries(r.Context(), f.Descriptor())
			if err != nil {
				writeStoreError(w, err)
				return
			}
			respBody.SeriesID = result.Series.ID
			respBody.Events = newEventRespBodies(result.Events)
			respBody.Truncated = result.Truncated
			writeJSON(w, http.StatusCreated, respBody)
			return
		}

		event, err := as.Store.CreateEvent(r.Context(), model.EventInput{
			Title:       f.Title,
			Description: f.Description,
			Location:    f.Location,
			Start:       f.Start,
			End:         f.End,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		eventResp := newEventRespBody(event)
		respBody.Event = &eventResp
		writeJSON(w, http.StatusCreated, respBody)
	})

	// active events overlapping [from, to), either bound may be left out
	muxer.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		var from, to time.Time
		for _, bound := range []struct {
			name string
			dst  *time.Time
		}{{"from", &from}, {"to", &to}} {
			raw := r.URL.Query().Get(bound.name)
			if raw == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid "+bound.name+" date, expected RFC 3339")
				return
			}
			*bound.dst = t.UTC()
		}
		if !from.IsZero() && !to.IsZero() && !to.After(from) {
			writeError(w, http.StatusBadRequest, "to must be after from")
			return
		}

		events, err := as.Store.ListEvents(r.Context(), from, to)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventRespBodies(events))
	})

	// edit: an override exception for occurrences, an update otherwise
	muxer.HandleFunc("PATCH /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody OverrideBody
		if !decode(w, r, &reqBody) {
			return
		}
		event, err := as.Store.EditEvent(r.Context(), r.PathValue("id"), reqBody.override())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventRespBody(event))
	})

	// delete: a skip exception for occurrences, a plain delete otherwise
	muxer.HandleFunc("DELETE /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := as.Store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// next slot of the same length that overlaps nothing
	muxer.HandleFunc("POST /suggest", func(w http.ResponseWriter, r *http.Request) {
		var reqBody SuggestReqBody
		if !decode(w, r, &reqBody) {
			return
		}
		if !reqBody.End.After(reqBody.Start) {
			writeError(w, http.StatusBadRequest, "end must be after start")
			return
		}
		slot, ok, err := as.Store.Suggest(r.Context(), conflict.Interval{
			Start: reqBody.Start.UTC(),
			End:   reqBody.End.UTC(),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "No free slot within the search horizon")
			return
		}
		writeJSON(w, http.StatusOK, newIntervalRespBody(slot))
	})
}
