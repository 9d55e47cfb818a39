package trip

import (
	"time"

	"tripboard/internal/model"
)

// Source is the read-only itinerary the resolver works on.
// *catalog.Catalog satisfies it.
type Source interface {
	Events() []model.Event
	Days() []model.Day
	Milestones() []model.Milestone
}

// DefaultDuration applies to event types missing from the duration table.
const DefaultDuration = 60 * time.Minute

var durations = map[model.EventType]time.Duration{
	model.TypeTravel:      30 * time.Minute,
	model.TypeWorkout:     30 * time.Minute,
	model.TypeFood:        90 * time.Minute,
	model.TypeWellness:    120 * time.Minute,
	model.TypeCompetition: 60 * time.Minute,
	model.TypeFree:        90 * time.Minute,
	model.TypeWork:        480 * time.Minute,
	model.TypeGeburi:      720 * time.Minute,
}

// Fallback texts when a secret event has no alternate title/subtitle.
const (
	FallbackSecretTitle    = "???"
	FallbackSecretSubtitle = "Überraschung!"
)

// Duration returns how long an event of this type runs.
func Duration(ev model.Event) time.Duration {
	if d, ok := durations[ev.Type]; ok {
		return d
	}
	return DefaultDuration
}

// End is the exclusive end of the event's interval.
func End(ev model.Event) time.Time {
	return ev.Start.Add(Duration(ev))
}

// IsRevealed reports whether the event's real details may be shown at now.
func IsRevealed(ev model.Event, now time.Time) bool {
	if !ev.IsSecret {
		return true
	}
	return !now.Before(ev.RevealTime())
}

// CurrentEvent returns the first event, in chronological order, whose
// [start, end) interval contains now.
func CurrentEvent(src Source, now time.Time) (model.Event, bool) {
	for _, ev := range src.Events() {
		if !now.Before(ev.Start) && now.Before(End(ev)) {
			return ev, true
		}
	}
	return model.Event{}, false
}

// NextEvent returns the earliest event starting strictly after now.
func NextEvent(src Source, now time.Time) (model.Event, bool) {
	for _, ev := range src.Events() {
		if ev.Start.After(now) {
			return ev, true
		}
	}
	return model.Event{}, false
}

// PastEvents returns all events that started before now, oldest first.
func PastEvents(src Source, now time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range src.Events() {
		if ev.Start.Before(now) {
			out = append(out, ev)
		}
	}
	return out
}

// Progress is the elapsed fraction of the event's interval, clamped to [0,1].
func Progress(ev model.Event, now time.Time) float64 {
	start := ev.Start
	end := End(ev)
	if !now.After(start) {
		return 0
	}
	if !now.Before(end) {
		return 1
	}
	return float64(now.Sub(start)) / float64(end.Sub(start))
}

// DisplayEvent returns the event as it may be shown at now. Unrevealed
// secret events get their alternate title/subtitle and lose location,
// details, image and coordinates.
func DisplayEvent(ev model.Event, now time.Time) model.Event {
	if IsRevealed(ev, now) {
		return ev
	}

	out := ev.Clone()
	out.Title = ev.SecretTitle
	if out.Title == "" {
		out.Title = FallbackSecretTitle
	}
	out.Subtitle = ev.SecretSubtitle
	if out.Subtitle == "" {
		out.Subtitle = FallbackSecretSubtitle
	}
	out.Location = ""
	out.Details = nil
	out.Image = ""
	out.Coordinates = nil
	return out
}

// RevealedLocations lists the distinct map positions of events that have
// started and are revealed, in first-seen order.
func RevealedLocations(src Source, now time.Time) []model.Location {
	out := make([]model.Location, 0)
	type key struct{ lat, lng float64 }
	seen := make(map[key]struct{})

	for _, ev := range src.Events() {
		if ev.Coordinates == nil {
			continue
		}
		if ev.Start.After(now) {
			continue
		}
		if !IsRevealed(ev, now) {
			continue
		}
		k := key{ev.Coordinates.Lat, ev.Coordinates.Lng}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		name := ev.Location
		if name == "" {
			name = ev.Title
		}
		out = append(out, model.Location{
			Lat:  ev.Coordinates.Lat,
			Lng:  ev.Coordinates.Lng,
			Name: name,
			Type: ev.Type,
		})
	}
	return out
}
