package monthly

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/metrics"
	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// BREAKDOWN PROVIDER
// =============================================================================

// BreakdownProvider computes the earnings breakdown of one day. It must be
// pure with respect to (entry, settings).
type BreakdownProvider interface {
	Breakdown(ctx context.Context, entry WorkEntry, s settings.Settings) (DailyBreakdown, error)
}

// ProviderFunc adapts a function to BreakdownProvider.
type ProviderFunc func(ctx context.Context, entry WorkEntry, s settings.Settings) (DailyBreakdown, error)

func (f ProviderFunc) Breakdown(ctx context.Context, entry WorkEntry, s settings.Settings) (DailyBreakdown, error) {
	return f(ctx, entry, s)
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// DefaultConcurrency bounds parallel provider calls per month.
const DefaultConcurrency = 4

// Result is an aggregate plus the days that were left out of it.
type Result struct {
	Aggregate MonthlyAggregate
	Skipped   []*generic.SkippedDayError
}

// Aggregator resolves breakdowns for a month of entries and folds them.
// A day whose breakdown fails is logged, counted and skipped; it never
// fails the month.
type Aggregator struct {
	provider    BreakdownProvider
	logger      *zap.Logger
	concurrency int
}

type Option func(*Aggregator)

// WithConcurrency sets the number of concurrent provider calls (min 1).
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n < 1 {
			n = 1
		}
		a.concurrency = n
	}
}

func NewAggregator(provider BreakdownProvider, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		provider:    provider,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type resolved struct {
	day  Day
	skip *generic.SkippedDayError
}

// AggregateEntries calls the provider once per entry, then runs the fold
// over the days that resolved. The only error returned is ctx's.
func (a *Aggregator) AggregateEntries(ctx context.Context, entries []WorkEntry, s settings.Settings) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.AggregationLatency.Observe(time.Since(start).Seconds())
	}()

	out := make([]resolved, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.resolve(gctx, entry, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	days := make([]Day, 0, len(entries))
	var skipped []*generic.SkippedDayError
	for _, r := range out {
		if r.skip != nil {
			a.logSkipped(r.skip)
			skipped = append(skipped, r.skip)
			continue
		}
		days = append(days, r.day)
	}

	metrics.MonthsAggregated.Inc()
	return Result{Aggregate: AggregateMonth(days, s), Skipped: skipped}, nil
}

func (a *Aggregator) resolve(ctx context.Context, entry WorkEntry, s settings.Settings) resolved {
	b, err := a.provider.Breakdown(ctx, entry, s)
	if err == nil {
		err = b.Validate()
	}
	if err != nil {
		return resolved{skip: &generic.SkippedDayError{EntryID: entry.ID, Date: entry.Date, Err: err}}
	}
	return resolved{day: Day{Entry: entry, Breakdown: b}}
}

func (a *Aggregator) logSkipped(skip *generic.SkippedDayError) {
	reason := metrics.ReasonProvider
	if errors.Is(skip, generic.ErrMalformedBreakdown) {
		reason = metrics.ReasonMalformed
	}
	metrics.DaysSkipped.WithLabelValues(reason).Inc()

	a.logger.Warn("day skipped from monthly aggregate",
		zap.String("entry_id", skip.EntryID),
		zap.String("date", skip.Date.String()),
		zap.String("reason", reason),
		zap.Error(skip.Err),
	)
}
