package trip

import (
	"time"

	"tripboard/internal/model"
)

// EventView is a display event plus the derived state the client renders.
type EventView struct {
	model.Event
	Revealed bool      `json:"revealed"`
	End      time.Time `json:"end"`
	Progress float64   `json:"progress"`
}

// View builds the display view of ev at now.
func View(ev model.Event, now time.Time) EventView {
	return EventView{
		Event:    DisplayEvent(ev, now),
		Revealed: IsRevealed(ev, now),
		End:      End(ev),
		Progress: Progress(ev, now),
	}
}

// Snapshot is every resolver output for one instant. All events in it are
// display versions; secrets that are not yet revealed stay redacted.
type Snapshot struct {
	Now        time.Time            `json:"now"`
	Current    *EventView           `json:"current,omitempty"`
	Next       *EventView           `json:"next,omitempty"`
	Past       []model.Event        `json:"past"`
	Locations  []model.Location     `json:"locations"`
	Countdowns []MilestoneCountdown `json:"countdowns"`
	Stats      TripStats            `json:"stats"`
	Complete   bool                 `json:"complete"`
}

// TakeSnapshot evaluates the itinerary at now.
func TakeSnapshot(src Source, now time.Time) Snapshot {
	s := Snapshot{
		Now:        now,
		Past:       make([]model.Event, 0),
		Locations:  RevealedLocations(src, now),
		Countdowns: Countdowns(src, now),
		Stats:      Stats(src),
	}

	if ev, ok := CurrentEvent(src, now); ok {
		v := View(ev, now)
		s.Current = &v
	}
	if ev, ok := NextEvent(src, now); ok {
		v := View(ev, now)
		s.Next = &v
	}
	for _, ev := range PastEvents(src, now) {
		s.Past = append(s.Past, DisplayEvent(ev, now))
	}
	s.Complete = s.Current == nil && s.Next == nil

	return s
}
