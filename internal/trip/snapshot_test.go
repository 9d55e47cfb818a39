package trip

import (
	"testing"
	"time"

	"tripboard/internal/model"
)

func TestCountdown(t *testing.T) {
	target := at("2026-02-04T00:00")
	now := target.Add(-(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second))

	got := Countdown(target, now)
	if got.Days != 2 || got.Hours != 3 || got.Minutes != 4 || got.Seconds != 5 {
		t.Fatalf("unexpected countdown: %+v", got)
	}
	if got.TotalMs != target.Sub(now).Milliseconds() {
		t.Fatalf("unexpected total: %d", got.TotalMs)
	}

	if got := Countdown(target, target); got != (TimeLeft{}) {
		t.Fatalf("expected zero countdown at target, got %+v", got)
	}
	if got := Countdown(target, target.Add(time.Hour)); got != (TimeLeft{}) {
		t.Fatalf("expected zero countdown after target, got %+v", got)
	}
}

func TestCountdowns_Reached(t *testing.T) {
	src := testSource()

	cds := Countdowns(src, at("2026-02-03T23:00"))
	if len(cds) != 1 || cds[0].Reached || cds[0].Left.Hours != 1 {
		t.Fatalf("unexpected countdowns before birthday: %+v", cds)
	}

	cds = Countdowns(src, at("2026-02-04T00:00"))
	if !cds[0].Reached {
		t.Fatal("expected milestone reached at its instant")
	}
}

func TestStats(t *testing.T) {
	st := Stats(testSource())
	want := TripStats{TotalEvents: 4, WorkoutEvents: 1, Days: 1}
	if st != want {
		t.Fatalf("Stats = %+v, want %+v", st, want)
	}
}

func TestTakeSnapshot(t *testing.T) {
	src := testSource()

	s := TakeSnapshot(src, at("2026-02-04T14:15"))
	if s.Current == nil || s.Current.ID != "a" {
		t.Fatalf("expected current a, got %+v", s.Current)
	}
	if s.Current.Progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", s.Current.Progress)
	}
	if !s.Current.End.Equal(at("2026-02-04T14:30")) {
		t.Fatalf("unexpected end %v", s.Current.End)
	}
	if s.Next == nil || s.Next.ID != "b" {
		t.Fatalf("expected next b, got %+v", s.Next)
	}
	if s.Next.Revealed || s.Next.Location != "" || s.Next.Title != "Hotel" {
		t.Fatalf("next must be redacted before reveal, got %+v", s.Next)
	}
	if len(s.Past) != 1 || s.Complete {
		t.Fatalf("unexpected past/complete: %d %v", len(s.Past), s.Complete)
	}

	s = TakeSnapshot(src, at("2026-02-05T00:00"))
	if !s.Complete || s.Current != nil || s.Next != nil {
		t.Fatalf("expected completed trip, got %+v", s)
	}
	if len(s.Past) != 4 {
		t.Fatalf("expected 4 past events, got %d", len(s.Past))
	}
}

func TestWatcher(t *testing.T) {
	w := NewWatcher(testSource())

	if got := w.Observe(at("2026-02-04T13:00")); len(got) != 0 {
		t.Fatalf("first observation must only prime, got %+v", got)
	}
	if got := w.Observe(at("2026-02-04T13:30")); len(got) != 0 {
		t.Fatalf("expected no transitions, got %+v", got)
	}

	got := w.Observe(at("2026-02-04T14:00"))
	if len(got) != 1 || got[0].Kind != TransitionStarted || got[0].EventID != "a" {
		t.Fatalf("expected a started, got %+v", got)
	}
	if got := w.Observe(at("2026-02-04T14:01")); len(got) != 0 {
		t.Fatalf("expected no repeat transition, got %+v", got)
	}

	got = w.Observe(at("2026-02-04T17:00"))
	kinds := map[TransitionKind]string{}
	for _, tr := range got {
		kinds[tr.Kind] = tr.EventID
	}
	if kinds[TransitionStarted] != "b" || kinds[TransitionRevealed] != "b" {
		t.Fatalf("expected b started and revealed, got %+v", got)
	}

	got = w.Observe(at("2026-02-04T19:00"))
	var revealedC bool
	for _, tr := range got {
		if tr.Kind == TransitionRevealed && tr.EventID == "c" {
			revealedC = true
		}
	}
	if !revealedC {
		t.Fatalf("expected c revealed, got %+v", got)
	}

	got = w.Observe(at("2026-02-04T22:00"))
	if len(got) != 1 || got[0].Kind != TransitionCompleted {
		t.Fatalf("expected completion, got %+v", got)
	}
	if got := w.Observe(at("2026-02-04T23:00")); len(got) != 0 {
		t.Fatalf("completion must be reported once, got %+v", got)
	}
}

func TestClock(t *testing.T) {
	fixed := at("2026-02-04T18:30")
	if got := NewClock(fixed).Now(); !got.Equal(fixed) {
		t.Fatalf("fixed clock returned %v", got)
	}
	if _, ok := NewClock(time.Time{}).(SystemClock); !ok {
		t.Fatal("zero debug time must use the system clock")
	}
}

func TestView_UsesRawEventForDerivedState(t *testing.T) {
	ev := model.Event{ID: "x", Start: at("2026-02-04T18:00"), Type: model.TypeWorkout, IsSecret: true, Location: "Gym"}
	v := View(ev, at("2026-02-04T17:00"))
	if v.Revealed || v.Location != "" || v.Progress != 0 {
		t.Fatalf("unexpected view %+v", v)
	}
}
