package trip

import (
	"sync"
	"time"
)

// TransitionKind names a change between two observations.
type TransitionKind string

const (
	TransitionStarted   TransitionKind = "started"
	TransitionRevealed  TransitionKind = "revealed"
	TransitionCompleted TransitionKind = "completed"
)

// Transition is a change noticed by the Watcher.
type Transition struct {
	Kind    TransitionKind
	EventID string
	Title   string
	At      time.Time
}

// Watcher polls the itinerary and reports what changed since the previous
// observation. The first observation only records state.
type Watcher struct {
	src Source

	mu        sync.Mutex
	primed    bool
	currentID string
	revealed  map[string]bool
	completed bool
}

func NewWatcher(src Source) *Watcher {
	return &Watcher{
		src:      src,
		revealed: make(map[string]bool),
	}
}

// Observe evaluates the itinerary at now and returns the transitions since
// the last call, in the order started, revealed, completed.
func (w *Watcher) Observe(now time.Time) []Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Transition

	cur, hasCur := CurrentEvent(w.src, now)
	curID := ""
	if hasCur {
		curID = cur.ID
	}
	if w.primed && hasCur && curID != w.currentID {
		out = append(out, Transition{
			Kind:    TransitionStarted,
			EventID: cur.ID,
			Title:   DisplayEvent(cur, now).Title,
			At:      now,
		})
	}
	w.currentID = curID

	for _, ev := range w.src.Events() {
		if !ev.IsSecret {
			continue
		}
		rev := IsRevealed(ev, now)
		if w.primed && rev && !w.revealed[ev.ID] {
			out = append(out, Transition{
				Kind:    TransitionRevealed,
				EventID: ev.ID,
				Title:   ev.Title,
				At:      now,
			})
		}
		w.revealed[ev.ID] = rev
	}

	_, hasNext := NextEvent(w.src, now)
	done := !hasCur && !hasNext
	if w.primed && done && !w.completed {
		out = append(out, Transition{Kind: TransitionCompleted, At: now})
	}
	w.completed = done
	w.primed = true

	return out
}
