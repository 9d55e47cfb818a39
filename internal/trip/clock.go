package trip

import "time"

// Clock supplies "now". Resolver functions never read the wall clock
// themselves; callers pass Clock.Now() in.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. It backs the debug-time
// override and tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// NewClock returns a FixedClock when debugTime is non-zero, else SystemClock.
func NewClock(debugTime time.Time) Clock {
	if debugTime.IsZero() {
		return SystemClock{}
	}
	return FixedClock{T: debugTime}
}
