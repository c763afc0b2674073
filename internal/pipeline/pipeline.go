package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/couchcryptid/mwac-vis/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Source reads the raw input table.
type Source interface {
	Name() string
	Load(ctx context.Context) (domain.RawTable, error)
}

// Transformer converts a raw table into a normalized one.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawTable) (domain.NormalizedTable, error)
}

// Publisher forwards a freshly loaded table downstream.
type Publisher interface {
	Publish(ctx context.Context, table domain.NormalizedTable) error
}

// Snapshot is one successfully normalized load. Snapshots are never modified;
// a reload replaces the whole value.
type Snapshot struct {
	Table    domain.NormalizedTable
	Source   string
	LoadedAt time.Time
	Version  uint64
}

// Loader keeps the current snapshot of the source and refreshes it on demand.
type Loader struct {
	source      Source
	transformer Transformer
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	current atomic.Pointer[Snapshot]

	mu      sync.Mutex // serializes reloads
	version uint64
}

// New creates a Loader. Pass a nil publisher to disable publication.
func New(s Source, t Transformer, p Publisher, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		source:      s,
		transformer: t,
		publisher:   p,
		logger:      logger,
		metrics:     metrics,
	}
}

// Snapshot returns the current snapshot, or nil before the first successful load.
func (l *Loader) Snapshot() *Snapshot {
	return l.current.Load()
}

// CheckReadiness returns nil once a snapshot has been loaded, or an error
// describing why the service is not yet ready.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if l.current.Load() == nil {
		return errors.New("no snapshot loaded yet")
	}
	return nil
}

// Reload reads and normalizes the source, then swaps the snapshot in. On
// failure the previous snapshot stays in place. Publication errors are logged
// and do not fail the reload.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := clock.Now()

	raw, err := l.source.Load(ctx)
	if err != nil {
		l.metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load source: %w", err)
	}

	table, err := l.transformer.Transform(ctx, raw)
	if err != nil {
		l.metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("normalize %s: %w", l.source.Name(), err)
	}

	l.version++
	snap := &Snapshot{
		Table:    table,
		Source:   l.source.Name(),
		LoadedAt: clock.Now(),
		Version:  l.version,
	}
	l.current.Store(snap)

	l.metrics.LoadsTotal.WithLabelValues("success").Inc()
	l.metrics.RowsLoaded.Set(float64(len(table.Rows)))
	l.metrics.LastLoadTimestamp.Set(float64(snap.LoadedAt.Unix()))
	l.metrics.LoadDuration.Observe(clock.Since(start).Seconds())

	l.logger.Info("snapshot loaded",
		"source", snap.Source,
		"version", snap.Version,
		"rows", len(table.Rows),
		"issues", len(table.Issues),
		"season_start_year", table.SeasonStartYear,
	)

	l.publish(ctx, table)
	return snap, nil
}

func (l *Loader) publish(ctx context.Context, table domain.NormalizedTable) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, table); err != nil {
		l.metrics.PublishTotal.WithLabelValues("error").Inc()
		l.logger.Error("publish snapshot failed", "error", err, "rows", len(table.Rows))
		return
	}
	l.metrics.PublishTotal.WithLabelValues("success").Inc()
}

// Run performs the initial load, retrying with exponential backoff until it
// succeeds, then reloads on every value received from triggers. The value
// names the trigger source. Run returns when ctx is cancelled.
func (l *Loader) Run(ctx context.Context, triggers <-chan string) error {
	l.logger.Info("loader started", "source", l.source.Name())
	l.metrics.LoaderRunning.Set(1)
	defer l.metrics.LoaderRunning.Set(0)

	if !l.initialLoad(ctx) {
		l.logger.Info("loader stopping", "reason", ctx.Err())
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loader stopping", "reason", ctx.Err())
			return nil
		case src, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			l.metrics.ReloadTriggers.WithLabelValues(src).Inc()
			if _, err := l.Reload(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("reload failed, keeping previous snapshot", "error", err, "trigger", src)
			}
		}
	}
}

// initialLoad retries Reload until it succeeds. Returns false if ctx was cancelled first.
func (l *Loader) initialLoad(ctx context.Context) bool {
	backoff := initialBackoff
	for {
		_, err := l.Reload(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		l.logger.Error("initial load failed", "error", err, "retry_in", backoff)
		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
