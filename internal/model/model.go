package model

import "time"

// EventType categorizes an event. It drives the event duration and the icon
// the client shows.
type EventType string

const (
	TypeTravel      EventType = "travel"
	TypeWorkout     EventType = "workout"
	TypeFood        EventType = "food"
	TypeWellness    EventType = "wellness"
	TypeCompetition EventType = "competition"
	TypeFree        EventType = "free"
	TypeWork        EventType = "work"
	TypeGeburi      EventType = "geburi"
)

// Status is the booking state of an event. Empty means unknown.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusFlexible  Status = "flexible"
)

// Coordinates is a map position. Name is optional and only used for labels.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// Details carries optional contact and booking information.
type Details struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Price   string `json:"price,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Event is a single scheduled trip activity.
//
// Secret events show SecretTitle/SecretSubtitle until RevealAt (or Start
// when RevealAt is zero) has passed.
type Event struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Type        EventType `json:"type"`
	Status      Status    `json:"status,omitempty"`

	Details *Details `json:"details,omitempty"`
	Image   string   `json:"image,omitempty"`

	IsSecret       bool      `json:"is_secret,omitempty"`
	SecretTitle    string    `json:"-"`
	SecretSubtitle string    `json:"-"`
	RevealAt       time.Time `json:"reveal_at,omitzero"`

	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// RevealTime returns the instant the event's secret details become visible.
func (e Event) RevealTime() time.Time {
	if e.RevealAt.IsZero() {
		return e.Start
	}
	return e.RevealAt
}

// Clone returns a deep copy so callers can redact without touching the catalog.
func (e Event) Clone() Event {
	out := e
	if e.Details != nil {
		d := *e.Details
		out.Details = &d
	}
	if e.Coordinates != nil {
		c := *e.Coordinates
		out.Coordinates = &c
	}
	return out
}

// Day groups the events of one calendar date.
type Day struct {
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Highlight bool      `json:"highlight,omitempty"`
	Events    []Event   `json:"events"`
}

// Milestone is a fixed date a countdown runs towards.
type Milestone struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// Location is a revealed map pin.
type Location struct {
	Lat  float64   `json:"lat"`
	Lng  float64   `json:"lng"`
	Name string    `json:"name"`
	Type EventType `json:"type"`
}
