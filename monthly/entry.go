package monthly

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bzrenis/workt-sub001/generic"
)

// Intervention is one standby call-out.
type Intervention struct {
	Start       string `json:"start"` // "HH:MM"
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

// WorkEntry is one logged day.
//
// The meal fields follow the client form: a voucher flag per slot and an
// optional slot-specific cash amount that overrides the standard
// reimbursement. Breakdown holds the provider document computed for the
// entry, when one was uploaded.
type WorkEntry struct {
	ID                string            `json:"id"`
	Date              generic.TimePoint `json:"date"`
	SiteName          string            `json:"siteName,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	IsStandbyDay      bool              `json:"isStandbyDay"`
	TravelAllowance   bool              `json:"travelAllowance"`
	MealLunchVoucher  bool              `json:"mealLunchVoucher"`
	MealLunchCash     decimal.Decimal   `json:"mealLunchCash"`
	MealDinnerVoucher bool              `json:"mealDinnerVoucher"`
	MealDinnerCash    decimal.Decimal   `json:"mealDinnerCash"`
	Interventions     []Intervention    `json:"interventi,omitempty"`
	Breakdown         json.RawMessage   `json:"breakdown,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Day pairs an entry with its computed breakdown.
type Day struct {
	Entry     WorkEntry
	Breakdown DailyBreakdown
}
