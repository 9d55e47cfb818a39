package web

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/language"

	"tripboard/internal/format"
	"tripboard/internal/ics"
	appLog "tripboard/internal/log"
	"tripboard/internal/model"
	"tripboard/internal/trip"
)

type currentDTO struct {
	trip.EventView
	EndsIn   string `json:"ends_in"`
	EndsInMs int64  `json:"ends_in_ms"`
}

type nextDTO struct {
	trip.EventView
	StartsIn   string `json:"starts_in"`
	StartsInMs int64  `json:"starts_in_ms"`
	DateLabel  string `json:"date_label"`
	TimeLabel  string `json:"time_label"`
}

type countdownDTO struct {
	trip.MilestoneCountdown
	Label string `json:"label"`
}

type statusResponse struct {
	Now        time.Time        `json:"now"`
	Title      string           `json:"title"`
	Locale     string           `json:"locale"`
	Current    *currentDTO      `json:"current,omitempty"`
	Next       *nextDTO         `json:"next,omitempty"`
	Countdowns []countdownDTO   `json:"countdowns"`
	Stats      trip.TripStats   `json:"stats"`
	Complete   bool             `json:"complete"`
	Locations  []model.Location `json:"locations"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r) {
		return
	}
	r, span := s.startSpan(r, "api.status")
	defer span.End()

	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := s.lang(r)
	snap := trip.TakeSnapshot(s.catalog, now)

	resp := statusResponse{
		Now:        snap.Now,
		Title:      s.catalog.Title(),
		Locale:     lang.String(),
		Countdowns: make([]countdownDTO, 0, len(snap.Countdowns)),
		Stats:      snap.Stats,
		Complete:   snap.Complete,
		Locations:  snap.Locations,
	}
	if c := snap.Current; c != nil {
		left := c.End.Sub(now)
		resp.Current = &currentDTO{
			EventView: *c,
			EndsIn:    format.Remaining(lang, left),
			EndsInMs:  max(left, 0).Milliseconds(),
		}
		span.SetAttributes(attribute.String("trip.current", c.ID))
	}
	if n := snap.Next; n != nil {
		until := n.Start.Sub(now)
		resp.Next = &nextDTO{
			EventView:  *n,
			StartsIn:   format.TimeUntil(lang, until),
			StartsInMs: max(until, 0).Milliseconds(),
			DateLabel:  format.ShortDate(n.Start, lang),
			TimeLabel:  format.Clock(n.Start),
		}
		span.SetAttributes(attribute.String("trip.next", n.ID))
	}
	for _, c := range snap.Countdowns {
		label := format.TimeUntil(lang, c.Left.Total)
		if c.Reached {
			label = format.Done(lang)
		}
		resp.Countdowns = append(resp.Countdowns, countdownDTO{MilestoneCountdown: c, Label: label})
	}

	writeJSON(w, http.StatusOK, resp)
}

type eventDTO struct {
	trip.EventView
	Past      bool   `json:"past"`
	Current   bool   `json:"current"`
	TimeLabel string `json:"time_label"`
}

type dayDTO struct {
	Date      string     `json:"date"`
	Label     string     `json:"label"`
	DateLabel string     `json:"date_label"`
	Highlight bool       `json:"highlight,omitempty"`
	Events    []eventDTO `json:"events"`
}

type eventsResponse struct {
	Now  time.Time `json:"now"`
	Days []dayDTO  `json:"days"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r) {
		return
	}
	r, span := s.startSpan(r, "api.events")
	defer span.End()

	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Now: now, Days: s.days(now, s.lang(r))})
}

func (s *Server) days(now time.Time, lang language.Tag) []dayDTO {
	current, hasCurrent := trip.CurrentEvent(s.catalog, now)

	days := s.catalog.Days()
	out := make([]dayDTO, 0, len(days))
	for _, d := range days {
		dd := dayDTO{
			Date:      d.Date.Format(time.DateOnly),
			Label:     d.Label,
			DateLabel: format.LongDate(d.Date, lang),
			Highlight: d.Highlight,
			Events:    make([]eventDTO, 0, len(d.Events)),
		}
		for _, ev := range d.Events {
			dd.Events = append(dd.Events, eventDTO{
				EventView: trip.View(ev, now),
				Past:      ev.Start.Before(now),
				Current:   hasCurrent && current.ID == ev.ID,
				TimeLabel: format.Clock(ev.Start),
			})
		}
		out = append(out, dd)
	}
	return out
}

func (s *Server) handlePast(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r) {
		return
	}
	r, span := s.startSpan(r, "api.past")
	defer span.End()

	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	past := trip.PastEvents(s.catalog, now)
	out := make([]model.Event, 0, len(past))
	for _, ev := range past {
		out = append(out, trip.DisplayEvent(ev, now))
	}
	span.SetAttributes(attribute.Int("trip.past", len(out)))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r) {
		return
	}
	r, span := s.startSpan(r, "api.locations")
	defer span.End()

	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trip.RevealedLocations(s.catalog, now))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r) {
		return
	}
	r, span := s.startSpan(r, "api.calendar")
	defer span.End()

	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body := ics.Export(s.catalog.Title(), s.catalog, now)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="tripboard.ics"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		appLog.Error("failed to write calendar", err)
	}
}
