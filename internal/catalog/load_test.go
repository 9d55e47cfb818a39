package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tripboard/internal/model"
	"tripboard/internal/trip"
)

func zurich(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Zurich")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04", value, loc)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Title() != "Geburtstagstrip" || c.Location().String() != "Europe/Zurich" {
		t.Fatalf("unexpected header %q %s", c.Title(), c.Location())
	}
	if n := len(c.Days()); n != 10 {
		t.Fatalf("expected 10 days, got %d", n)
	}
	if n := len(c.Events()); n != 25 {
		t.Fatalf("expected 25 events, got %d", n)
	}
	if n := len(c.Milestones()); n != 8 {
		t.Fatalf("expected 8 milestones, got %d", n)
	}

	m, ok := c.Milestone("birthday")
	if !ok || !m.At.Equal(zurich(t, "2026-02-04T00:00")) {
		t.Fatalf("unexpected birthday milestone %+v", m)
	}
}

func TestDefault_Wednesday(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	ev, ok := trip.CurrentEvent(c, zurich(t, "2026-02-04T14:15"))
	if !ok || ev.ID != "wed-2" {
		t.Fatalf("expected wed-2 current at 14:15, got %q %v", ev.ID, ok)
	}
	if ev.Coordinates == nil || ev.Coordinates.Name != "Cademario" {
		t.Fatalf("place not resolved: %+v", ev.Coordinates)
	}
	if _, ok := trip.CurrentEvent(c, zurich(t, "2026-02-04T14:30")); ok {
		t.Fatal("travel lasts 30 minutes; nothing should be current at 14:30")
	}

	at := zurich(t, "2026-02-04T16:00")
	next, ok := trip.NextEvent(c, at)
	if !ok || next.ID != "wed-3" {
		t.Fatalf("expected wed-3 next, got %q", next.ID)
	}
	shown := trip.DisplayEvent(next, at)
	if shown.Title != "Check-in Hotel" || shown.Location != "" || shown.Details != nil {
		t.Fatalf("wed-3 should be redacted before 17:00: %+v", shown)
	}
	if shown := trip.DisplayEvent(next, zurich(t, "2026-02-04T17:00")); shown.Location != "Kurhaus Cademario" {
		t.Fatalf("wed-3 should be revealed at 17:00: %+v", shown)
	}
}

func TestDefault_DisabledSecret(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for _, ev := range c.Events() {
		if ev.ID != "fri2-1" {
			continue
		}
		if ev.IsSecret {
			t.Fatal("fri2-1 has secret.enabled=false and must not be secret")
		}
		if ev.SecretTitle != "Roadtrip!" || ev.SecretSubtitle != "Wohin wohl?" {
			t.Fatalf("secret texts should still be kept, got %q / %q", ev.SecretTitle, ev.SecretSubtitle)
		}
		return
	}
	t.Fatal("fri2-1 not found")
}

const repeatYAML = `
title: Wiederholung
timezone: Europe/Zurich
places:
  gym: {lat: 47.2, lng: 7.5, name: Box}
days:
  - date: "2026-02-01"
    label: Start
    events:
      - id: wod
        start: "2026-02-01T07:00"
        title: Morgentraining
        type: workout
        place: gym
        repeat: "FREQ=DAILY;COUNT=3"
        secret: {title: Training, reveal_at: "2026-02-01T06:00"}
`

func TestParse_Repeat(t *testing.T) {
	c, err := Parse([]byte(repeatYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	evs := c.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(evs))
	}
	for i, want := range []string{"wod-1", "wod-2", "wod-3"} {
		if evs[i].ID != want {
			t.Fatalf("occurrence %d: id %q, want %q", i, evs[i].ID, want)
		}
		wantStart := zurich(t, "2026-02-01T07:00").AddDate(0, 0, i)
		if !evs[i].Start.Equal(wantStart) {
			t.Fatalf("occurrence %d: start %s, want %s", i, evs[i].Start, wantStart)
		}
		if got := evs[i].Start.Sub(evs[i].RevealAt); got != time.Hour {
			t.Fatalf("occurrence %d: reveal offset %s", i, got)
		}
		if !evs[i].IsSecret || evs[i].Coordinates == nil {
			t.Fatalf("occurrence %d lost base fields: %+v", i, evs[i])
		}
	}

	days := c.Days()
	if len(days) != 3 {
		t.Fatalf("expected occurrences to create 3 days, got %d", len(days))
	}
	if days[0].Label != "Start" || days[1].Label != "Montag, 2. Februar" {
		t.Fatalf("unexpected day labels %q %q", days[0].Label, days[1].Label)
	}
}

func TestDefault_SecretTexts(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for _, ev := range c.Events() {
		if ev.SecretTitle != "" && ev.SecretSubtitle == "" {
			t.Errorf("%s: secret subtitle lost", ev.ID)
		}
	}
}

func TestParse_FlowSecretWithPunctuation(t *testing.T) {
	doc := `
days:
  - date: "2026-02-06"
    events:
      - id: trip
        start: "2026-02-06T10:00"
        title: Abfahrt
        secret: {enabled: false, title: "Roadtrip!", subtitle: "Wohin wohl? #1: Süden", reveal_at: "2026-02-04T17:00"}
`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ev := c.Events()[0]
	if ev.IsSecret || ev.SecretSubtitle != "Wohin wohl? #1: Süden" {
		t.Fatalf("unexpected secret fields %+v", ev)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
		is   error
	}{
		{name: "empty", doc: "  \n", want: "empty document"},
		{name: "bad yaml", doc: "days: [", want: "decode"},
		{name: "bad timezone", doc: "timezone: Mars/Olympus\ndays: []", want: "timezone"},
		{
			name: "unknown place",
			doc:  "days:\n  - date: \"2026-02-01\"\n    events:\n      - {id: a, start: \"2026-02-01T10:00\", place: nowhere}",
			is:   ErrUnknownPlace,
		},
		{
			name: "duplicate id",
			doc:  "days:\n  - date: \"2026-02-01\"\n    events:\n      - {id: a, start: \"2026-02-01T10:00\"}\n      - {id: a, start: \"2026-02-01T11:00\"}",
			is:   ErrDuplicateID,
		},
		{
			name: "bad start",
			doc:  "days:\n  - date: \"2026-02-01\"\n    events:\n      - {id: a, start: \"morgen\"}",
			want: "invalid time",
		},
		{
			name: "missing id",
			doc:  "days:\n  - date: \"2026-02-01\"\n    events:\n      - {start: \"2026-02-01T10:00\"}",
			want: "missing id",
		},
		{
			name: "bad rrule",
			doc:  "days:\n  - date: \"2026-02-01\"\n    events:\n      - {id: a, start: \"2026-02-01T10:00\", repeat: \"FREQ=SOMETIMES\"}",
			want: "repeat",
		},
		{
			name: "bad milestone",
			doc:  "milestones:\n  - {id: m, at: \"soon\"}",
			want: "milestone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil || len(c.Events()) == 0 {
		t.Fatalf("Load(\"\") should return the default catalog: %v", err)
	}

	path := filepath.Join(t.TempDir(), "trip.yaml")
	if err := os.WriteFile(path, []byte(repeatYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Title() != "Wiederholung" {
		t.Fatalf("unexpected title %q", c.Title())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExpandRepeat_Cap(t *testing.T) {
	base := model.Event{ID: "daily", Start: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	out, err := expandRepeat(repeatSpec{base: base, rule: "FREQ=DAILY"}, 5)
	if err != nil {
		t.Fatalf("expandRepeat: %v", err)
	}
	if len(out) != 5 || out[4].ID != "daily-5" {
		t.Fatalf("expected 5 capped occurrences, got %d", len(out))
	}
	if !out[0].RevealAt.IsZero() {
		t.Fatal("occurrences of a base without reveal_at should not get one")
	}
}
