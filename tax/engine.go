package tax

import (
	"github.com/shopspring/decimal"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// Result is the outcome of one gross-to-net conversion.
//
// DeductionRate is TotalDeductions/Gross. When Gross is not positive the
// irpef rate cannot be computed: DeductionRate is zero and RateDefined is
// false, and callers must show it as "not available".
type Result struct {
	Method          Method
	Gross           decimal.Decimal
	Net             decimal.Decimal
	TotalDeductions decimal.Decimal
	DeductionRate   decimal.Decimal
	RateDefined     bool
	Breakdown       map[DeductionKind]decimal.Decimal
}

func emptyBreakdown() map[DeductionKind]decimal.Decimal {
	b := make(map[DeductionKind]decimal.Decimal, len(AllKinds))
	for _, k := range AllKinds {
		b[k] = decimal.Zero
	}
	return b
}

// Engine applies a fixed Rules set. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Default is the engine configured with ItalianRules.
var Default = NewEngine(ItalianRules())

// Rules returns the engine configuration.
func (e *Engine) Rules() Rules { return e.rules }

// CalculateNet converts a gross monthly amount using the given settings.
// Unknown methods fall back to irpef.
func (e *Engine) CalculateNet(grossMonthly decimal.Decimal, s Settings) Result {
	if s.Method == MethodCustom {
		return e.customNet(grossMonthly, s.CustomDeductionRate)
	}
	return e.irpefNet(grossMonthly)
}

func (e *Engine) irpefNet(gross decimal.Decimal) Result {
	annual := gross.Mul(monthsPerYear)
	irpef := e.rules.AnnualIRPEF(annual).Div(monthsPerYear)
	social := gross.Mul(e.rules.SocialRate())
	additional := gross.Mul(e.rules.AdditionalRate)

	total := irpef.Add(social).Add(additional)

	res := Result{
		Method:          MethodIRPEF,
		Gross:           gross,
		Net:             decimal.Max(decimal.Zero, gross.Sub(total)),
		TotalDeductions: total,
		Breakdown:       emptyBreakdown(),
	}
	res.Breakdown[KindIRPEF] = irpef
	res.Breakdown[KindSocialContributions] = social
	res.Breakdown[KindAdditionalTaxes] = additional

	if gross.IsPositive() {
		res.DeductionRate = total.Div(gross)
		res.RateDefined = true
	}
	return res
}

func (e *Engine) customNet(gross, ratePercent decimal.Decimal) Result {
	rate := ratePercent.Div(hundred)
	total := gross.Mul(rate)

	res := Result{
		Method:          MethodCustom,
		Gross:           gross,
		Net:             decimal.Max(decimal.Zero, gross.Sub(total)),
		TotalDeductions: total,
		DeductionRate:   rate,
		RateDefined:     true,
		Breakdown:       emptyBreakdown(),
	}
	res.Breakdown[KindCustom] = total
	return res
}

// CalculateNet converts gross to net with the Italian rules.
func CalculateNet(grossMonthly decimal.Decimal, s Settings) Result {
	return Default.CalculateNet(grossMonthly, s)
}
