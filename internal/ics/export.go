package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"tripboard/internal/model"
	"tripboard/internal/trip"
)

// ProductID is the PRODID of exported calendars.
const ProductID = "-//tripboard//itinerary//DE"

// Export renders the itinerary as an iCalendar feed as it may be shown at
// now: unrevealed secret events carry only their redacted title/subtitle.
// Times are written in UTC.
func Export(name string, src trip.Source, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
	}

	for _, raw := range src.Events() {
		ev := trip.DisplayEvent(raw, now)

		ve := cal.AddEvent(ev.ID + "@tripboard")
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(trip.End(ev).UTC())
		ve.SetSummary(ev.Title)

		if desc := description(ev); desc != "" {
			ve.SetDescription(desc)
		}
		if loc := location(ev); loc != "" {
			ve.SetLocation(loc)
		}
		if ev.Details != nil && ev.Details.Website != "" {
			ve.SetURL(ev.Details.Website)
		}
		if ev.Type != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(ev.Type)))
		}
		if st := status(ev.Status); st != "" {
			ve.SetProperty(ical.ComponentPropertyStatus, st)
		}
	}

	return cal.Serialize()
}

func description(ev model.Event) string {
	parts := make([]string, 0, 4)
	if ev.Subtitle != "" {
		parts = append(parts, ev.Subtitle)
	}
	if ev.Description != "" {
		parts = append(parts, ev.Description)
	}
	if d := ev.Details; d != nil {
		if d.Phone != "" {
			parts = append(parts, "Tel: "+d.Phone)
		}
		if d.Price != "" {
			parts = append(parts, d.Price)
		}
		if d.Notes != "" {
			parts = append(parts, d.Notes)
		}
	}
	return strings.Join(parts, "\n")
}

func location(ev model.Event) string {
	if ev.Details != nil && ev.Details.Address != "" {
		if ev.Location != "" {
			return ev.Location + ", " + ev.Details.Address
		}
		return ev.Details.Address
	}
	return ev.Location
}

func status(s model.Status) string {
	switch s {
	case model.StatusConfirmed:
		return "CONFIRMED"
	case model.StatusPending, model.StatusFlexible:
		return "TENTATIVE"
	default:
		return ""
	}
}
