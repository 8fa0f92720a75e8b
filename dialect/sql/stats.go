package sql

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/syssam/collection/dialect"
)

// OtherOperation counts statements run without an operation label.
const OtherOperation = "other"

type (
	operationKey    struct{}
	requestStatsKey struct{}
)

// WithOperation labels the statements run under ctx, e.g.
// "ProductGroup.load-products".
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFrom returns the operation label of ctx or OtherOperation.
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return OtherOperation
}

// WithRequestStats returns a copy of ctx carrying fresh counters. A
// StatsDriver adds every statement run under the returned context to them
// as well as to its own.
func WithRequestStats(ctx context.Context) (context.Context, *Stats) {
	s := &Stats{}
	return context.WithValue(ctx, requestStatsKey{}, s), s
}

// RequestStatsFrom returns the counters attached by WithRequestStats.
func RequestStatsFrom(ctx context.Context) *Stats {
	s, _ := ctx.Value(requestStatsKey{}).(*Stats)
	return s
}

// OpStats is a snapshot of the statements run for one operation.
type OpStats struct {
	Statements int64
	Errors     int64
	Slow       int64
	Duration   time.Duration
}

// LogValue implements slog.LogValuer.
func (s OpStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("statements", s.Statements),
		slog.Duration("duration", s.Duration),
		slog.Int64("slow", s.Slow),
		slog.Int64("errors", s.Errors),
	)
}

// Stats counts statements per operation. The zero value is ready to use.
type Stats struct {
	mu  sync.Mutex
	ops map[string]*OpStats
}

func (s *Stats) add(op string, elapsed time.Duration, slow bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops == nil {
		s.ops = make(map[string]*OpStats)
	}
	o, ok := s.ops[op]
	if !ok {
		o = &OpStats{}
		s.ops[op] = o
	}
	o.Statements++
	o.Duration += elapsed
	if slow {
		o.Slow++
	}
	if err != nil {
		o.Errors++
	}
}

// Snapshot returns a copy of the counters keyed by operation.
func (s *Stats) Snapshot() map[string]OpStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]OpStats, len(s.ops))
	for op, o := range s.ops {
		snap[op] = *o
	}
	return snap
}

// Total sums the counters of every operation.
func (s *Stats) Total() OpStats {
	var total OpStats
	for _, o := range s.Snapshot() {
		total.Statements += o.Statements
		total.Errors += o.Errors
		total.Slow += o.Slow
		total.Duration += o.Duration
	}
	return total
}

// LogValue renders one group per operation, sorted by name.
func (s *Stats) LogValue() slog.Value {
	snap := s.Snapshot()
	attrs := make([]slog.Attr, 0, len(snap))
	for _, op := range slices.Sorted(maps.Keys(snap)) {
		attrs = append(attrs, slog.Attr{Key: op, Value: snap[op].LogValue()})
	}
	return slog.GroupValue(attrs...)
}

// StatsDriver wraps a driver, counts its statements per operation and
// reports slow ones.
type StatsDriver struct {
	dialect.Driver
	stats   Stats
	slowLog *slog.Logger
	stmtLog *slog.Logger

	mu        sync.RWMutex
	threshold time.Duration
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowQueryLog logs slow statements as warnings on logger.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	return func(s *StatsDriver) {
		s.slowLog = logger
	}
}

// WithStatementLog logs every statement at debug level on logger.
func WithStatementLog(logger *slog.Logger) StatsOption {
	return func(s *StatsDriver) {
		s.stmtLog = logger
	}
}

// NewStatsDriver wraps drv.
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	client := store.NewClient(store.Driver(stats))
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the counters of every statement run through the driver.
func (d *StatsDriver) Stats() *Stats {
	return &d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetSlowThreshold updates the slow query threshold while statements run.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}

// Query executes a query and records it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.run(ctx, "query", query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec executes a statement and records it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.run(ctx, "exec", query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are recorded too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.logStmt(ctx, "begin transaction")
	return &statsTx{Tx: tx, drv: d, ctx: ctx}, nil
}

func (d *StatsDriver) run(ctx context.Context, kind, query string, args any, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	slow := elapsed > d.SlowThreshold()
	op := OperationFrom(ctx)
	d.stats.add(op, elapsed, slow, err)
	if rs := RequestStatsFrom(ctx); rs != nil {
		rs.add(op, elapsed, slow, err)
	}
	d.logStmt(ctx, kind, "sql", query, "args", args, "duration", elapsed, "error", err)
	if slow && d.slowLog != nil {
		d.slowLog.WarnContext(ctx, "slow query detected",
			"operation", op,
			"duration", elapsed,
			"query", query,
			"args", args,
		)
	}
	return err
}

func (d *StatsDriver) logStmt(ctx context.Context, msg string, attrs ...any) {
	if d.stmtLog == nil {
		return
	}
	d.stmtLog.DebugContext(ctx, msg, append([]any{"operation", OperationFrom(ctx)}, attrs...)...)
}

// statsTx records the statements of a transaction on its driver.
type statsTx struct {
	dialect.Tx
	drv *StatsDriver
	ctx context.Context
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.drv.run(ctx, "tx query", query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.drv.run(ctx, "tx exec", query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func (tx *statsTx) Commit() error {
	tx.drv.logStmt(tx.ctx, "commit transaction")
	return tx.Tx.Commit()
}

func (tx *statsTx) Rollback() error {
	tx.drv.logStmt(tx.ctx, "rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
	_ slog.LogValuer = (*Stats)(nil)
)
