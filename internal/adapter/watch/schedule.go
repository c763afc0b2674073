package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedule sends reload triggers on a cron schedule.
type Schedule struct {
	cron   *cron.Cron
	spec   string
	logger *slog.Logger
}

// NewSchedule parses a standard five-field cron spec (descriptors such as
// "@every 10m" are accepted too) and prepares a job that triggers reloads.
func NewSchedule(spec string, out chan<- string, logger *slog.Logger) (*Schedule, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		// Prevent overlapping runs
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(spec, func() {
		if !send(out, SourceSchedule) {
			logger.Debug("reload already pending", "source", SourceSchedule)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	return &Schedule{cron: c, spec: spec, logger: logger}, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Schedule) Start() {
	s.logger.Info("reload schedule started", "schedule", s.spec)
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once a running job finishes.
func (s *Schedule) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
