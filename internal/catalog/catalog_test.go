package catalog

import (
	"errors"
	"testing"
	"time"

	"tripboard/internal/model"
)

func TestNew_SortsDaysAndEvents(t *testing.T) {
	d1 := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	d0 := d1.AddDate(0, 0, -1)

	c, err := New("t", time.UTC, []model.Day{
		{Date: d1, Events: []model.Event{
			{ID: "late", Start: d1.Add(20 * time.Hour)},
			{ID: "early", Start: d1.Add(8 * time.Hour)},
		}},
		{Date: d0, Events: []model.Event{{ID: "first", Start: d0.Add(9 * time.Hour)}}},
	}, []model.Milestone{
		{ID: "b", At: d1},
		{ID: "a", At: d0},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var ids []string
	for _, ev := range c.Events() {
		ids = append(ids, ev.ID)
	}
	if got := len(ids); got != 3 || ids[0] != "first" || ids[1] != "early" || ids[2] != "late" {
		t.Fatalf("unexpected event order %v", ids)
	}
	if days := c.Days(); !days[0].Date.Equal(d0) || days[1].Events[0].ID != "early" {
		t.Fatalf("unexpected day order %+v", days)
	}
	if ms := c.Milestones(); ms[0].ID != "a" {
		t.Fatalf("milestones not sorted: %+v", ms)
	}
	if m, ok := c.Milestone("b"); !ok || !m.At.Equal(d1) {
		t.Fatalf("Milestone(b) = %+v, %v", m, ok)
	}
	if _, ok := c.Milestone("zzz"); ok {
		t.Fatal("unknown milestone should not be found")
	}
}

func TestNew_DuplicateID(t *testing.T) {
	d := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	_, err := New("t", time.UTC, []model.Day{
		{Date: d, Events: []model.Event{{ID: "x", Start: d}}},
		{Date: d.AddDate(0, 0, 1), Events: []model.Event{{ID: "x", Start: d.AddDate(0, 0, 1)}}},
	}, nil)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	d := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	c, err := New("t", nil, []model.Day{{Date: d, Events: []model.Event{
		{ID: "x", Start: d, Title: "orig", Coordinates: &model.Coordinates{Lat: 1}},
	}}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Location() != time.Local {
		t.Fatalf("nil location should default to Local")
	}

	evs := c.Events()
	evs[0].Title = "changed"
	evs[0].Coordinates.Lat = 99
	days := c.Days()
	days[0].Events[0].Title = "changed"

	got := c.Events()[0]
	if got.Title != "orig" || got.Coordinates.Lat != 1 {
		t.Fatalf("catalog was mutated through an accessor: %+v", got)
	}
	if c.Days()[0].Events[0].Title != "orig" {
		t.Fatal("catalog day was mutated through an accessor")
	}
}
