package trip

import (
	"time"

	"tripboard/internal/model"
)

// TimeLeft splits the time remaining until a target into clock units.
type TimeLeft struct {
	Days    int           `json:"days"`
	Hours   int           `json:"hours"`
	Minutes int           `json:"minutes"`
	Seconds int           `json:"seconds"`
	Total   time.Duration `json:"-"`
	TotalMs int64         `json:"total_ms"`
}

// Countdown returns the time left until target. Once target is reached
// every field is zero.
func Countdown(target, now time.Time) TimeLeft {
	d := target.Sub(now)
	if d <= 0 {
		return TimeLeft{}
	}
	s := int64(d / time.Second)
	return TimeLeft{
		Days:    int(s / 86400),
		Hours:   int((s % 86400) / 3600),
		Minutes: int((s % 3600) / 60),
		Seconds: int(s % 60),
		Total:   d,
		TotalMs: d.Milliseconds(),
	}
}

// MilestoneCountdown pairs a milestone with its countdown.
type MilestoneCountdown struct {
	Milestone model.Milestone `json:"milestone"`
	Left      TimeLeft        `json:"left"`
	Reached   bool            `json:"reached"`
}

// Countdowns computes a countdown for every milestone of the itinerary.
func Countdowns(src Source, now time.Time) []MilestoneCountdown {
	ms := src.Milestones()
	out := make([]MilestoneCountdown, 0, len(ms))
	for _, m := range ms {
		out = append(out, MilestoneCountdown{
			Milestone: m,
			Left:      Countdown(m.At, now),
			Reached:   !now.Before(m.At),
		})
	}
	return out
}

// TripStats summarizes the itinerary for the hero section.
type TripStats struct {
	TotalEvents   int `json:"total_events"`
	WorkoutEvents int `json:"workout_events"`
	Days          int `json:"days"`
}

// Stats counts events, workout-like events (workout and competition) and days.
func Stats(src Source) TripStats {
	days := src.Days()
	st := TripStats{Days: len(days)}
	for _, d := range days {
		for _, ev := range d.Events {
			st.TotalEvents++
			if ev.Type == model.TypeWorkout || ev.Type == model.TypeCompetition {
				st.WorkoutEvents++
			}
		}
	}
	return st
}
