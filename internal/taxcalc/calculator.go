// Package taxcalc implements the deduction calculation engine: the
// incremental-cost rule for gluten-free purchases, receipt total
// recalculation, the CRA medical-expense threshold test, and tax-year
// aggregation. All functions are pure; persistence and HTTP concerns live
// elsewhere.
package taxcalc

import (
	"math"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// ReceiptTotals holds the derived denormalized fields of a receipt
type ReceiptTotals struct {
	TotalAmount    float64
	EligibleAmount float64
}

// RoundCents rounds a money amount to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal computes the line total for a purchased line
func LineTotal(unitPrice float64, quantity int) (float64, error) {
	if unitPrice < 0 {
		return 0, domain.NewValidationError("unitPrice", "cannot be negative")
	}
	if quantity < 1 {
		return 0, domain.NewValidationError("quantity", "must be at least 1")
	}
	return RoundCents(unitPrice * float64(quantity)), nil
}

// EligibleLineAmount computes the tax-eligible amount for a purchased line.
// With a comparison price the eligible amount is the incremental cost of the
// gluten-free item over its regular equivalent, floored at zero; without one
// the full line total counts, since no baseline exists. Ineligible lines
// contribute nothing regardless of price.
func EligibleLineAmount(unitPrice float64, quantity int, comparisonUnitPrice *float64, isEligible bool) (float64, error) {
	lineTotal, err := LineTotal(unitPrice, quantity)
	if err != nil {
		return 0, err
	}
	if comparisonUnitPrice != nil && *comparisonUnitPrice < 0 {
		return 0, domain.NewValidationError("comparisonUnitPrice", "cannot be negative")
	}
	if !isEligible {
		return 0, nil
	}
	if comparisonUnitPrice == nil {
		return lineTotal, nil
	}
	comparisonTotal := RoundCents(*comparisonUnitPrice * float64(quantity))
	return math.Max(0, RoundCents(lineTotal-comparisonTotal)), nil
}

// eligibleItemAmount is EligibleLineAmount over a stored item, whose Price
// and ComparisonPrice are already line totals.
func eligibleItemAmount(item domain.ReceiptItem) (float64, error) {
	if err := ValidateItem(item); err != nil {
		return 0, err
	}
	if !item.IsEligible {
		return 0, nil
	}
	if item.ComparisonPrice == nil {
		return RoundCents(item.Price), nil
	}
	return math.Max(0, RoundCents(item.Price-*item.ComparisonPrice)), nil
}

// ValidateItem checks the invariants of a stored receipt item
func ValidateItem(item domain.ReceiptItem) error {
	if item.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if item.Price < 0 {
		return domain.NewValidationError("price", "cannot be negative")
	}
	if item.Quantity < 1 {
		return domain.NewValidationError("quantity", "must be at least 1")
	}
	if item.ComparisonPrice != nil && *item.ComparisonPrice < 0 {
		return domain.NewValidationError("comparisonPrice", "cannot be negative")
	}
	return nil
}

// IncrementalCost derives the persisted incrementalCost field for an item:
// price minus comparison price when a comparison exists, undefined otherwise.
// Unlike the eligible amount it is not floored, so a cheaper gluten-free item
// records a negative incremental cost.
func IncrementalCost(price float64, comparisonPrice *float64) *float64 {
	if comparisonPrice == nil {
		return nil
	}
	cost := RoundCents(price - *comparisonPrice)
	return &cost
}

// RecalculateReceiptTotals derives a receipt's totalAmount and eligibleAmount
// from its item list. The result is the only trusted source for those two
// persisted fields when items are present.
func RecalculateReceiptTotals(items []domain.ReceiptItem) (ReceiptTotals, error) {
	var totals ReceiptTotals
	for _, item := range items {
		eligible, err := eligibleItemAmount(item)
		if err != nil {
			return ReceiptTotals{}, err
		}
		totals.TotalAmount += item.Price
		totals.EligibleAmount += eligible
	}
	totals.TotalAmount = RoundCents(totals.TotalAmount)
	totals.EligibleAmount = RoundCents(totals.EligibleAmount)
	return totals, nil
}

// Threshold computes the non-deductible floor: the lesser of the fixed
// dollar cap and rate (3%) times net income.
func Threshold(netIncome, fixedCap, rate float64) float64 {
	return RoundCents(math.Min(fixedCap, netIncome*rate))
}

// Deductible applies the threshold to the combined eligible expenses,
// floored at zero.
func Deductible(totalEligibleExpenses, threshold float64) float64 {
	return RoundCents(math.Max(0, totalEligibleExpenses-threshold))
}
