package taxcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestEligibleLineAmount(t *testing.T) {
	tests := []struct {
		name                string
		unitPrice           float64
		quantity            int
		comparisonUnitPrice *float64
		isEligible          bool
		want                float64
	}{
		{
			name:      "ineligible line contributes nothing",
			unitPrice: 10, quantity: 2, isEligible: false,
			want: 0,
		},
		{
			name:      "ineligible line with comparison still contributes nothing",
			unitPrice: 10, quantity: 2, comparisonUnitPrice: floatPtr(4), isEligible: false,
			want: 0,
		},
		{
			name:      "no comparison treats full line total as incremental",
			unitPrice: 4.50, quantity: 2, isEligible: true,
			want: 9.00,
		},
		{
			name:      "comparison present yields incremental cost",
			unitPrice: 8, quantity: 2, comparisonUnitPrice: floatPtr(5), isEligible: true,
			want: 6.00,
		},
		{
			name:      "cheaper gluten-free item floors at zero",
			unitPrice: 5, quantity: 3, comparisonUnitPrice: floatPtr(6), isEligible: true,
			want: 0,
		},
		{
			name:      "equal prices yield zero",
			unitPrice: 3.25, quantity: 4, comparisonUnitPrice: floatPtr(3.25), isEligible: true,
			want: 0,
		},
		{
			name:      "fractional cents round to money",
			unitPrice: 1.105, quantity: 3, isEligible: true,
			want: 3.32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EligibleLineAmount(tt.unitPrice, tt.quantity, tt.comparisonUnitPrice, tt.isEligible)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestEligibleLineAmountRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name                string
		unitPrice           float64
		quantity            int
		comparisonUnitPrice *float64
	}{
		{name: "negative unit price", unitPrice: -1, quantity: 1},
		{name: "zero quantity", unitPrice: 1, quantity: 0},
		{name: "negative quantity", unitPrice: 1, quantity: -2},
		{name: "negative comparison price", unitPrice: 1, quantity: 1, comparisonUnitPrice: floatPtr(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EligibleLineAmount(tt.unitPrice, tt.quantity, tt.comparisonUnitPrice, true)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestIncrementalCost(t *testing.T) {
	assert.Nil(t, IncrementalCost(10, nil))

	cost := IncrementalCost(10, floatPtr(6.50))
	require.NotNil(t, cost)
	assert.InDelta(t, 3.50, *cost, 0.001)

	// not floored: the stored field records the raw difference
	cost = IncrementalCost(5, floatPtr(8))
	require.NotNil(t, cost)
	assert.InDelta(t, -3, *cost, 0.001)
}

func TestRecalculateReceiptTotals(t *testing.T) {
	items := []domain.ReceiptItem{
		{Name: "GF bread", Price: 9.00, Quantity: 2, IsEligible: true, ComparisonPrice: floatPtr(5.00)},
		{Name: "GF pasta", Price: 4.50, Quantity: 1, IsEligible: true},
		{Name: "milk", Price: 6.25, Quantity: 1, IsEligible: false},
		{Name: "GF crackers", Price: 3.00, Quantity: 1, IsEligible: true, ComparisonPrice: floatPtr(4.00)},
	}

	totals, err := RecalculateReceiptTotals(items)
	require.NoError(t, err)

	// 9.00 + 4.50 + 6.25 + 3.00
	assert.InDelta(t, 22.75, totals.TotalAmount, 0.001)
	// (9.00-5.00) + 4.50 + 0 + max(0, 3.00-4.00)
	assert.InDelta(t, 8.50, totals.EligibleAmount, 0.001)
	assert.LessOrEqual(t, totals.EligibleAmount, totals.TotalAmount)
}

func TestRecalculateReceiptTotalsIsIdempotent(t *testing.T) {
	items := []domain.ReceiptItem{
		{Name: "a", Price: 12.34, Quantity: 2, IsEligible: true},
		{Name: "b", Price: 5.67, Quantity: 1, IsEligible: true, ComparisonPrice: floatPtr(2.10)},
	}

	first, err := RecalculateReceiptTotals(items)
	require.NoError(t, err)
	second, err := RecalculateReceiptTotals(items)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecalculateReceiptTotalsEmptyItems(t *testing.T) {
	totals, err := RecalculateReceiptTotals(nil)
	require.NoError(t, err)
	assert.Zero(t, totals.TotalAmount)
	assert.Zero(t, totals.EligibleAmount)
}

func TestRecalculateReceiptTotalsRejectsBadItem(t *testing.T) {
	_, err := RecalculateReceiptTotals([]domain.ReceiptItem{
		{Name: "bad", Price: -1, Quantity: 1, IsEligible: true},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestThreshold(t *testing.T) {
	// 3% of 50000 is 1500, below the cap
	assert.InDelta(t, 1500, Threshold(50000, 2759, 0.03), 0.001)

	// 3% of 200000 is 6000, so the cap wins
	assert.InDelta(t, 2759, Threshold(200000, 2759, 0.03), 0.001)

	// zero income gives a zero threshold
	assert.Zero(t, Threshold(0, 2759, 0.03))
}

func TestDeductible(t *testing.T) {
	assert.InDelta(t, 1500, Deductible(3000, 1500), 0.001)
	assert.InDelta(t, 241, Deductible(3000, 2759), 0.001)

	// never negative
	assert.Zero(t, Deductible(1000, 2759))
}
