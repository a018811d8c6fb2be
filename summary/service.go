/*
Package summary builds the monthly summary a worker sees for one month.

PURPOSE:
  Glues storage, the monthly aggregator and the tax engine together:
  load the effective settings, load the month's entries, resolve and fold
  their breakdowns, then estimate the net pay of the month's gross.

REQUEST FLOW:
  1. Validate year/month (ErrInvalidPeriod)
  2. Load settings (defaults when none were saved)
  3. Load entries in [first day, last day] of the month
  4. Aggregator.AggregateEntries (skipped days are reported, never fatal)
  5. tax.Engine.CalculateNet(TotalEarnings, settings.NetCalculation)

SEE ALSO:
  - monthly/aggregator.go: Breakdown resolution and fold
  - tax/engine.go: Net estimation
  - store/sqlite: Persistent implementation of the stores
*/
package summary

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/metrics"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/settings"
	"github.com/bzrenis/workt-sub001/tax"
)

// =============================================================================
// STORE INTERFACES
// =============================================================================

// EntryStore persists work entries.
type EntryStore interface {
	SaveEntry(ctx context.Context, e monthly.WorkEntry) (monthly.WorkEntry, error)
	GetEntry(ctx context.Context, id string) (monthly.WorkEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	// EntriesInRange returns the entries of a period ordered by date.
	EntriesInRange(ctx context.Context, p generic.Period) ([]monthly.WorkEntry, error)
}

// SettingsStore persists the settings document.
type SettingsStore interface {
	// LoadSettings returns the defaults when nothing was saved.
	LoadSettings(ctx context.Context) (settings.Settings, error)
	SaveSettings(ctx context.Context, s settings.Settings) error
}

// Store is everything the service needs.
type Store interface {
	EntryStore
	SettingsStore
}

// =============================================================================
// SERVICE
// =============================================================================

// MonthSummary is the aggregate of a month plus its net estimate.
type MonthSummary struct {
	Year      int
	Month     time.Month
	Aggregate monthly.MonthlyAggregate
	Net       tax.Result
	Skipped   []*generic.SkippedDayError
}

type Service struct {
	store      Store
	aggregator *monthly.Aggregator
	engine     *tax.Engine
	logger     *zap.Logger
}

func NewService(store Store, aggregator *monthly.Aggregator, engine *tax.Engine, logger *zap.Logger) *Service {
	if engine == nil {
		engine = tax.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, aggregator: aggregator, engine: engine, logger: logger}
}

// Month computes the summary of year/month from scratch.
func (s *Service) Month(ctx context.Context, year, month int) (MonthSummary, error) {
	period, err := generic.NewMonthPeriod(year, month)
	if err != nil {
		return MonthSummary{}, err
	}

	st, err := s.store.LoadSettings(ctx)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("load settings: %w", err)
	}

	entries, err := s.store.EntriesInRange(ctx, period)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("load entries for %04d-%02d: %w", year, month, err)
	}

	res, err := s.aggregator.AggregateEntries(ctx, entries, st)
	if err != nil {
		return MonthSummary{}, err
	}

	net := s.Net(res.Aggregate.TotalEarnings, st.NetCalculation)

	s.logger.Debug("month summary computed",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("entries", len(entries)),
		zap.Int("skipped", len(res.Skipped)),
		zap.String("gross", res.Aggregate.TotalEarnings.StringFixed(2)),
		zap.String("net", net.Net.StringFixed(2)),
	)

	return MonthSummary{
		Year:      year,
		Month:     time.Month(month),
		Aggregate: res.Aggregate,
		Net:       net,
		Skipped:   res.Skipped,
	}, nil
}

// Net estimates the net of gross and counts the calculation.
func (s *Service) Net(gross decimal.Decimal, ns tax.Settings) tax.Result {
	r := s.engine.CalculateNet(gross, ns)
	metrics.NetCalculations.WithLabelValues(string(r.Method)).Inc()
	return r
}

// GrossFromNet inverts the net estimate and counts the inversion.
func (s *Service) GrossFromNet(target decimal.Decimal, ns tax.Settings) tax.Inversion {
	inv := s.engine.GrossFromNet(target, ns)
	metrics.GrossInversions.WithLabelValues(strconv.FormatBool(inv.Converged)).Inc()
	if !inv.Converged {
		s.logger.Warn("gross-from-net did not converge",
			zap.String("target_net", target.StringFixed(2)),
			zap.String("estimate", inv.Estimate.StringFixed(2)),
			zap.Int("iterations", inv.Iterations),
		)
	}
	return inv
}
