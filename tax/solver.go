package tax

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INVERSION - desired net -> required gross
// =============================================================================

// Solver controls the fixed-point iteration used by Invert.
type Solver struct {
	MaxIterations int
	Tolerance     decimal.Decimal
}

// DefaultSolver stops after 50 iterations or within one cent.
var DefaultSolver = Solver{
	MaxIterations: 50,
	Tolerance:     decimal.RequireFromString("0.01"),
}

// seedFactor is the first guess for gross as a multiple of the target net.
var seedFactor = decimal.RequireFromString("1.35")

// Inversion is the result of a numeric inversion.
// When Converged is false, Estimate is the last estimate and callers
// should surface the value as approximate.
type Inversion struct {
	Estimate   decimal.Decimal
	Converged  bool
	Iterations int
}

// Invert finds x such that forward(x) is within tolerance of target,
// starting from seed. forward must be non-decreasing. Each step moves the
// estimate by the signed residual (estimate -= forward(estimate) - target).
func (s Solver) Invert(forward func(decimal.Decimal) decimal.Decimal, target, seed decimal.Decimal) Inversion {
	estimate := seed
	for i := 1; i <= s.MaxIterations; i++ {
		diff := forward(estimate).Sub(target)
		if diff.Abs().LessThanOrEqual(s.Tolerance) {
			return Inversion{Estimate: estimate, Converged: true, Iterations: i}
		}
		estimate = estimate.Sub(diff)
	}
	return Inversion{Estimate: estimate, Converged: false, Iterations: s.MaxIterations}
}

// GrossFromNet inverts CalculateNet for the given settings.
func (e *Engine) GrossFromNet(targetNet decimal.Decimal, s Settings) Inversion {
	forward := func(gross decimal.Decimal) decimal.Decimal {
		return e.CalculateNet(gross, s).Net
	}
	return DefaultSolver.Invert(forward, targetNet, targetNet.Mul(seedFactor))
}

// GrossFromNet inverts CalculateNet with the Italian rules.
func GrossFromNet(targetNet decimal.Decimal, s Settings) Inversion {
	return Default.GrossFromNet(targetNet, s)
}
