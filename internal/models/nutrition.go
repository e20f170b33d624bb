// internal/models/nutrition.go
package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the running daily macro tally in grams. Each field is kept
// non-negative and rounded to two decimal places.
type Totals struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// Record is one resolved food or direct-macro contribution.
type Record struct {
	FoodName string  `json:"food_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// HistoryEntry is one logged contribution. History is ordered by insertion;
// the newest entry is the top of the undo stack.
type HistoryEntry struct {
	Input     string    `json:"input"`
	Nutrition Record    `json:"nutrition"`
	Timestamp time.Time `json:"timestamp"`
}

// Round2 rounds grams to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Add applies a contribution to the totals. Each macro is floored at zero
// after the sum, so a record with negative fields can never drive a total
// below zero, then rounded.
func (t Totals) Add(r Record) Totals {
	return Totals{
		Carbs:   Round2(math.Max(0, t.Carbs+r.Carbs)),
		Protein: Round2(math.Max(0, t.Protein+r.Protein)),
		Fat:     Round2(math.Max(0, t.Fat+r.Fat)),
	}
}

// Subtract removes a contribution from the totals with the same zero floor
// and rounding as Add.
func (t Totals) Subtract(r Record) Totals {
	return Totals{
		Carbs:   Round2(math.Max(0, t.Carbs-r.Carbs)),
		Protein: Round2(math.Max(0, t.Protein-r.Protein)),
		Fat:     Round2(math.Max(0, t.Fat-r.Fat)),
	}
}

// IsZero reports whether no macros have been logged.
func (t Totals) IsZero() bool {
	return t.Carbs == 0 && t.Protein == 0 && t.Fat == 0
}
