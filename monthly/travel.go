package monthly

import (
	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
)

// =============================================================================
// TRAVEL ALLOWANCE TIERS
// =============================================================================
//
// A day's travel allowance is compared with the full daily amount. Ratios
// within ±0.02 (inclusive) of a named tier land in that tier; anything else,
// including CCNL-proportional amounts like 87.5%, lands in Other.

// TravelTier names a bucket of TravelBuckets.
type TravelTier string

const (
	TierFull  TravelTier = "100"
	Tier78    TravelTier = "78"
	TierHalf  TravelTier = "50"
	TierOther TravelTier = "other"
)

var tierTolerance = decimal.RequireFromString("0.02")

var namedTiers = []struct {
	tier  TravelTier
	ratio decimal.Decimal
}{
	{TierFull, decimal.NewFromInt(1)},
	{Tier78, decimal.RequireFromString("0.78")},
	{TierHalf, decimal.RequireFromString("0.50")},
}

// ClassifyTravel returns the tier of amount relative to the full daily
// amount. Without a positive daily amount every allowance is Other.
func ClassifyTravel(amount, dailyAmount decimal.Decimal) TravelTier {
	if !dailyAmount.IsPositive() {
		return TierOther
	}
	ratio := amount.Div(dailyAmount)
	for _, t := range namedTiers {
		if ratio.Sub(t.ratio).Abs().LessThanOrEqual(tierTolerance) {
			return t.tier
		}
	}
	return TierOther
}

type TravelBucket struct {
	Amount decimal.Decimal `json:"amount"`
	Days   int             `json:"days"`
}

func (b TravelBucket) add(amount decimal.Decimal) TravelBucket {
	return TravelBucket{Amount: b.Amount.Add(amount), Days: b.Days + 1}
}

// TravelBuckets always carries all four tiers.
type TravelBuckets struct {
	Full  TravelBucket `json:"100"`
	R78   TravelBucket `json:"78"`
	Half  TravelBucket `json:"50"`
	Other TravelBucket `json:"other"`
}

// Add puts a positive allowance into exactly one tier.
func (tb TravelBuckets) Add(amount, dailyAmount decimal.Decimal) TravelBuckets {
	switch ClassifyTravel(amount, dailyAmount) {
	case TierFull:
		tb.Full = tb.Full.add(amount)
	case Tier78:
		tb.R78 = tb.R78.add(amount)
	case TierHalf:
		tb.Half = tb.Half.add(amount)
	default:
		tb.Other = tb.Other.add(amount)
	}
	return tb
}

// Get returns the bucket for a tier.
func (tb TravelBuckets) Get(tier TravelTier) TravelBucket {
	switch tier {
	case TierFull:
		return tb.Full
	case Tier78:
		return tb.R78
	case TierHalf:
		return tb.Half
	default:
		return tb.Other
	}
}

// Days is the number of days across all tiers.
func (tb TravelBuckets) Days() int {
	return tb.Full.Days + tb.R78.Days + tb.Half.Days + tb.Other.Days
}

// Amount is the allowance across all tiers.
func (tb TravelBuckets) Amount() decimal.Decimal {
	return generic.Sum(tb.Full.Amount, tb.R78.Amount, tb.Half.Amount, tb.Other.Amount)
}
