package generic

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// DISPLAY FORMATTING - Italian locale ("1.234,56 €")
// =============================================================================

var italian = message.NewPrinter(language.Italian)

// FormatEuro renders an amount as "1.234,56 €".
func FormatEuro(d decimal.Decimal) string {
	f, _ := Round2(d).Float64()
	return italian.Sprintf("%.2f €", f)
}

// FormatHours renders hours as "7,50 h".
func FormatHours(d decimal.Decimal) string {
	f, _ := Round2(d).Float64()
	return italian.Sprintf("%.2f h", f)
}

// FormatPercent renders a 0-100 percentage as "12,5%".
func FormatPercent(d decimal.Decimal) string {
	f, _ := d.Round(1).Float64()
	return italian.Sprintf("%.1f%%", f)
}
