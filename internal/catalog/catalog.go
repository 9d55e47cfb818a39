package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"tripboard/internal/model"
)

var (
	// ErrDuplicateID is returned when two events share an identifier.
	ErrDuplicateID = errors.New("duplicate event id")
	// ErrUnknownPlace is returned when an event references an undefined place.
	ErrUnknownPlace = errors.New("unknown place")
)

// Catalog is the immutable itinerary: days of events plus countdown
// milestones. Accessors return copies; the catalog itself is never mutated
// after New returns.
type Catalog struct {
	title      string
	loc        *time.Location
	days       []model.Day
	events     []model.Event
	milestones []model.Milestone
}

// New builds a catalog from days and milestones. Days are ordered by date,
// events within a day by start time; the flattened event list is sorted by
// start time with authoring order kept on ties.
func New(title string, loc *time.Location, days []model.Day, milestones []model.Milestone) (*Catalog, error) {
	if loc == nil {
		loc = time.Local
	}

	c := &Catalog{
		title:      title,
		loc:        loc,
		days:       make([]model.Day, 0, len(days)),
		milestones: append([]model.Milestone(nil), milestones...),
	}

	seen := make(map[string]struct{})
	for _, d := range days {
		day := d
		day.Events = make([]model.Event, 0, len(d.Events))
		for _, ev := range d.Events {
			if _, dup := seen[ev.ID]; dup {
				return nil, fmt.Errorf("catalog: event %q: %w", ev.ID, ErrDuplicateID)
			}
			seen[ev.ID] = struct{}{}
			day.Events = append(day.Events, ev.Clone())
		}
		sort.SliceStable(day.Events, func(i, j int) bool {
			return day.Events[i].Start.Before(day.Events[j].Start)
		})
		c.days = append(c.days, day)
		c.events = append(c.events, day.Events...)
	}

	sort.SliceStable(c.days, func(i, j int) bool {
		return c.days[i].Date.Before(c.days[j].Date)
	})
	sort.SliceStable(c.events, func(i, j int) bool {
		return c.events[i].Start.Before(c.events[j].Start)
	})
	sort.SliceStable(c.milestones, func(i, j int) bool {
		return c.milestones[i].At.Before(c.milestones[j].At)
	})

	return c, nil
}

func (c *Catalog) Title() string {
	return c.title
}

// Location is the timezone the catalog was authored in.
func (c *Catalog) Location() *time.Location {
	return c.loc
}

// Events returns all events sorted by start time.
func (c *Catalog) Events() []model.Event {
	out := make([]model.Event, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Clone()
	}
	return out
}

// Days returns the days in date order.
func (c *Catalog) Days() []model.Day {
	out := make([]model.Day, len(c.days))
	for i, d := range c.days {
		out[i] = d
		out[i].Events = make([]model.Event, len(d.Events))
		for j, ev := range d.Events {
			out[i].Events[j] = ev.Clone()
		}
	}
	return out
}

// Milestones returns the countdown targets in chronological order.
func (c *Catalog) Milestones() []model.Milestone {
	return append([]model.Milestone(nil), c.milestones...)
}

// Milestone looks up a milestone by id.
func (c *Catalog) Milestone(id string) (model.Milestone, bool) {
	for _, m := range c.milestones {
		if m.ID == id {
			return m, true
		}
	}
	return model.Milestone{}, false
}
