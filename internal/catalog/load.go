package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"tripboard/internal/format"
	appLog "tripboard/internal/log"
	"tripboard/internal/model"
)

// defaultYAML is the itinerary shipped with the binary.
//
//go:embed default.yaml
var defaultYAML []byte

// fileCatalog mirrors the YAML authoring format.
type fileCatalog struct {
	Title      string               `yaml:"title"`
	Timezone   string               `yaml:"timezone"`
	Places     map[string]filePlace `yaml:"places"`
	Milestones []fileMilestone      `yaml:"milestones"`
	Days       []fileDay            `yaml:"days"`
}

type filePlace struct {
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
	Name string  `yaml:"name"`
}

type fileMilestone struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	At    string `yaml:"at"`
}

type fileDay struct {
	Date      string      `yaml:"date"`
	Label     string      `yaml:"label"`
	Highlight bool        `yaml:"highlight"`
	Events    []fileEvent `yaml:"events"`
}

type fileEvent struct {
	ID          string       `yaml:"id"`
	Start       string       `yaml:"start"`
	Title       string       `yaml:"title"`
	Subtitle    string       `yaml:"subtitle"`
	Description string       `yaml:"description"`
	Location    string       `yaml:"location"`
	Type        string       `yaml:"type"`
	Status      string       `yaml:"status"`
	Details     *fileDetails `yaml:"details"`
	Image       string       `yaml:"image"`
	Place       string       `yaml:"place"`
	Coordinates *filePlace   `yaml:"coordinates"`
	Secret      *fileSecret  `yaml:"secret"`
	Repeat      string       `yaml:"repeat"`
}

type fileDetails struct {
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Website string `yaml:"website"`
	Price   string `yaml:"price"`
	Notes   string `yaml:"notes"`
}

// fileSecret holds the redacted presentation. Enabled defaults to true; the
// itinerary carries secret titles on some events that are not secret.
type fileSecret struct {
	Enabled  *bool  `yaml:"enabled"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	RevealAt string `yaml:"reveal_at"`
}

// Default parses the embedded itinerary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from a YAML file. An empty path loads the embedded
// default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("catalog: empty document")
	}

	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	loc := time.Local
	if fc.Timezone != "" {
		l, err := time.LoadLocation(fc.Timezone)
		if err != nil {
			return nil, fmt.Errorf("catalog: timezone %q: %w", fc.Timezone, err)
		}
		loc = l
	}

	milestones := make([]model.Milestone, 0, len(fc.Milestones))
	for _, fm := range fc.Milestones {
		at, err := parseTime(fm.At, loc)
		if err != nil {
			return nil, fmt.Errorf("catalog: milestone %q: %w", fm.ID, err)
		}
		label := fm.Label
		if label == "" {
			label = fm.ID
		}
		milestones = append(milestones, model.Milestone{ID: fm.ID, Label: label, At: at})
	}

	days := make([]model.Day, 0, len(fc.Days))
	var repeats []repeatSpec
	for _, fd := range fc.Days {
		date, err := parseTime(fd.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("catalog: day %q: %w", fd.Label, err)
		}
		day := model.Day{
			Date:      dayStart(date),
			Label:     fd.Label,
			Highlight: fd.Highlight,
			Events:    make([]model.Event, 0, len(fd.Events)),
		}
		if day.Label == "" {
			day.Label = format.LongDate(day.Date, format.DefaultLang)
		}
		for _, fe := range fd.Events {
			ev, err := fe.toModel(fc.Places, loc)
			if err != nil {
				return nil, fmt.Errorf("catalog: event %q: %w", fe.ID, err)
			}
			if fe.Repeat != "" {
				repeats = append(repeats, repeatSpec{base: ev, rule: fe.Repeat})
				continue
			}
			day.Events = append(day.Events, ev)
		}
		days = append(days, day)
	}

	for _, rs := range repeats {
		occ, err := expandRepeat(rs, defaultMaxOccurrences)
		if err != nil {
			return nil, fmt.Errorf("catalog: event %q: %w", rs.base.ID, err)
		}
		for _, ev := range occ {
			days = placeInDay(days, ev)
		}
	}

	return New(fc.Title, loc, days, milestones)
}

func (fe fileEvent) toModel(places map[string]filePlace, loc *time.Location) (model.Event, error) {
	if strings.TrimSpace(fe.ID) == "" {
		return model.Event{}, errors.New("missing id")
	}
	start, err := parseTime(fe.Start, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}

	ev := model.Event{
		ID:          fe.ID,
		Start:       start,
		Title:       fe.Title,
		Subtitle:    fe.Subtitle,
		Description: fe.Description,
		Location:    fe.Location,
		Type:        model.EventType(fe.Type),
		Status:      model.Status(fe.Status),
		Image:       fe.Image,
	}

	if fe.Details != nil {
		ev.Details = &model.Details{
			Address: fe.Details.Address,
			Phone:   fe.Details.Phone,
			Website: fe.Details.Website,
			Price:   fe.Details.Price,
			Notes:   fe.Details.Notes,
		}
	}

	if fe.Place != "" {
		p, ok := places[fe.Place]
		if !ok {
			return model.Event{}, fmt.Errorf("place %q: %w", fe.Place, ErrUnknownPlace)
		}
		ev.Coordinates = &model.Coordinates{Lat: p.Lat, Lng: p.Lng, Name: p.Name}
	}
	if fe.Coordinates != nil {
		ev.Coordinates = &model.Coordinates{Lat: fe.Coordinates.Lat, Lng: fe.Coordinates.Lng, Name: fe.Coordinates.Name}
	}

	if s := fe.Secret; s != nil {
		ev.IsSecret = s.Enabled == nil || *s.Enabled
		ev.SecretTitle = s.Title
		ev.SecretSubtitle = s.Subtitle
		if s.RevealAt != "" {
			at, err := parseTime(s.RevealAt, loc)
			if err != nil {
				return model.Event{}, fmt.Errorf("reveal_at: %w", err)
			}
			ev.RevealAt = at
		}
	}

	return ev, nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 or a local wall-clock form interpreted in loc.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", v)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// placeInDay appends ev to the day covering its start date, creating the day
// if the itinerary has none.
func placeInDay(days []model.Day, ev model.Event) []model.Day {
	date := dayStart(ev.Start)
	for i := range days {
		if days[i].Date.Equal(date) {
			days[i].Events = append(days[i].Events, ev)
			return days
		}
	}
	appLog.Debug("catalog: repeat occurrence outside authored days", "id", ev.ID, "date", date.Format("2006-01-02"))
	return append(days, model.Day{
		Date:   date,
		Label:  format.LongDate(date, format.DefaultLang),
		Events: []model.Event{ev},
	})
}
