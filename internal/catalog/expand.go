package catalog

import (
	"errors"
	"fmt"

	"github.com/teambition/rrule-go"

	appLog "tripboard/internal/log"
	"tripboard/internal/model"
)

// defaultMaxOccurrences caps a single repeat rule so an unbounded RRULE
// cannot flood the itinerary.
const defaultMaxOccurrences = 366

type repeatSpec struct {
	base model.Event
	rule string
}

// expandRepeat turns an event with an RRULE into concrete events. The n-th
// occurrence (from 1) gets id "<id>-<n>" and keeps the base event's offset
// between start and reveal time.
func expandRepeat(rs repeatSpec, max int) ([]model.Event, error) {
	r, err := rrule.StrToRRule(rs.rule)
	if err != nil {
		return nil, fmt.Errorf("repeat %q: %w", rs.rule, err)
	}
	r.DTStart(rs.base.Start)

	revealOffset := rs.base.RevealTime().Sub(rs.base.Start)

	out := make([]model.Event, 0)
	next := r.Iterator()
	for {
		start, ok := next()
		if !ok {
			break
		}
		if len(out) >= max {
			appLog.Error("catalog: truncated repeat occurrences due to cap",
				errors.New("max occurrences reached"),
				"id", rs.base.ID,
				"cap", max,
			)
			break
		}

		ev := rs.base.Clone()
		ev.ID = fmt.Sprintf("%s-%d", rs.base.ID, len(out)+1)
		ev.Start = start.In(rs.base.Start.Location())
		if !rs.base.RevealAt.IsZero() {
			ev.RevealAt = ev.Start.Add(revealOffset)
		}
		out = append(out, ev)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("repeat %q: no occurrences", rs.rule)
	}
	return out, nil
}
