package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "tripboard/internal/log"
)

// Scheduler runs named recurring jobs. Specs accept the standard five-field
// cron syntax, an optional leading seconds field, and descriptors such as
// "@every 1s".
type Scheduler struct {
	c *cron.Cron
}

// New creates a stopped scheduler evaluating specs in loc (time.Local if nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		c: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
	}
}

// Add registers fn under name. It can be called before or after Start.
func (s *Scheduler) Add(spec, name string, fn func()) error {
	id, err := s.c.AddFunc(spec, func() {
		appLog.Debug("scheduler: job run", "job", name)
		fn()
	})
	if err != nil {
		return fmt.Errorf("scheduler: job %q spec %q: %w", name, spec, err)
	}
	appLog.Info("scheduler: job registered", "job", name, "spec", spec, "entry", int(id))
	return nil
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.c.Entries())
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop stops scheduling new runs and waits for running jobs to finish or
// ctx to be done, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}
