package sql

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/syssam/modelgen/dialect"
)

// DefaultSlowThreshold is the duration above which a statement is slow.
// Catalog queries of large schemas easily take a few hundred milliseconds.
const DefaultSlowThreshold = 500 * time.Millisecond

// Stats summarizes the statements run through a StatsDriver.
type Stats struct {
	Queries  int64
	Execs    int64
	Errors   int64
	Slow     int64
	Duration time.Duration
	// Slowest is the longest statement, in its compact form.
	Slowest         string
	SlowestDuration time.Duration
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("queries", s.Queries),
		slog.Int64("execs", s.Execs),
		slog.Duration("duration", s.Duration),
	}
	if s.Errors > 0 {
		attrs = append(attrs, slog.Int64("errors", s.Errors))
	}
	if s.Slow > 0 {
		attrs = append(attrs, slog.Int64("slow", s.Slow))
	}
	if s.Slowest != "" {
		attrs = append(attrs, slog.String("slowest", s.Slowest), slog.Duration("slowest_duration", s.SlowestDuration))
	}
	return slog.GroupValue(attrs...)
}

// StatsDriver is a Driver recording the statements it runs, inside
// transactions or not.
type StatsDriver struct {
	*Driver
	threshold time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		if d > 0 {
			s.threshold = d
		}
	}
}

// WithSlowQueryLog logs slow statements at warning level.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	return func(s *StatsDriver) { s.logger = logger }
}

// NewStatsDriver wraps drv.
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, threshold: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the statistics recorded so far.
func (d *StatsDriver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, query, start, err, true)
	return err
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, start, err, false)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, start time.Time, err error, isQuery bool) {
	elapsed := time.Since(start)
	d.mu.Lock()
	if isQuery {
		d.stats.Queries++
	} else {
		d.stats.Execs++
	}
	d.stats.Duration += elapsed
	if err != nil {
		d.stats.Errors++
	}
	if elapsed > d.stats.SlowestDuration {
		d.stats.Slowest, d.stats.SlowestDuration = compact(query), elapsed
	}
	slow := elapsed > d.threshold
	if slow {
		d.stats.Slow++
	}
	d.mu.Unlock()
	if slow && d.logger != nil {
		d.logger.WarnContext(ctx, "slow query", "duration", elapsed, "query", compact(query))
	}
}

// compact folds the whitespace of a multi-line statement and cuts it to
// a readable length.
func compact(query string) string {
	const limit = 120
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > limit {
		q = q[:limit] + "..."
	}
	return q
}

// Tx starts a transaction whose statements are recorded by d.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, driver: d}, nil
}

type statsTx struct {
	dialect.Tx
	driver *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.record(ctx, query, start, err, true)
	return err
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, query, start, err, false)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
)
