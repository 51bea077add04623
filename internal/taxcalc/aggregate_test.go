package taxcalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestYearRange(t *testing.T) {
	start, end := YearRange(2024, time.UTC)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 999_000_000, time.UTC), end)
}

func TestAggregateYearSingleMarchReceipt(t *testing.T) {
	receipts := []domain.Receipt{
		{ReceiptDate: date(2024, time.March, 15), TotalAmount: 60.00, EligibleAmount: 42.00},
	}

	agg := AggregateYear(2024, receipts, nil)

	assert.Equal(t, 1, agg.ReceiptsCount)
	assert.InDelta(t, 42.00, agg.TotalEligibleAmount, 0.001)
	require.Len(t, agg.MonthlyBreakdown, 12)

	for _, bucket := range agg.MonthlyBreakdown {
		if bucket.Month == 3 {
			assert.Equal(t, "March", bucket.MonthName)
			assert.Equal(t, 1, bucket.Receipts.Count)
			assert.InDelta(t, 42.00, bucket.Receipts.EligibleAmount, 0.001)
			assert.InDelta(t, 60.00, bucket.Receipts.TotalAmount, 0.001)
		} else {
			assert.Zero(t, bucket.Receipts.Count, "month %d", bucket.Month)
			assert.Zero(t, bucket.Receipts.EligibleAmount, "month %d", bucket.Month)
		}
	}
}

func TestAggregateYearMonthlySumsPartitionTotals(t *testing.T) {
	receipts := []domain.Receipt{
		{ReceiptDate: date(2024, time.January, 2), TotalAmount: 10.25, EligibleAmount: 4.75},
		{ReceiptDate: date(2024, time.January, 20), TotalAmount: 33.10, EligibleAmount: 12.00},
		{ReceiptDate: date(2024, time.June, 8), TotalAmount: 21.40, EligibleAmount: 21.40},
		{ReceiptDate: date(2024, time.December, 31), TotalAmount: 5.00, EligibleAmount: 0},
	}
	expenses := []domain.MedicalExpense{
		{Date: date(2024, time.February, 1), Amount: 120.00, Category: domain.CategoryConsultation},
		{Date: date(2024, time.February, 14), Amount: 35.50, Category: domain.CategoryMedication},
		{Date: date(2024, time.November, 3), Amount: 80.00, Category: domain.CategoryConsultation},
	}

	agg := AggregateYear(2024, receipts, expenses)

	assert.Equal(t, 4, agg.ReceiptsCount)
	assert.Equal(t, 3, agg.MedicalExpensesCount)
	assert.InDelta(t, 69.75, agg.TotalReceiptAmount, 0.001)
	assert.InDelta(t, 38.15, agg.TotalEligibleAmount, 0.001)
	assert.InDelta(t, 235.50, agg.TotalMedicalExpenses, 0.001)

	var receiptCount, medicalCount int
	var eligibleSum, totalSum, medicalSum float64
	for _, bucket := range agg.MonthlyBreakdown {
		receiptCount += bucket.Receipts.Count
		medicalCount += bucket.Medical.Count
		eligibleSum += bucket.Receipts.EligibleAmount
		totalSum += bucket.Receipts.TotalAmount
		medicalSum += bucket.Medical.TotalAmount
	}
	assert.Equal(t, agg.ReceiptsCount, receiptCount)
	assert.Equal(t, agg.MedicalExpensesCount, medicalCount)
	assert.InDelta(t, agg.TotalEligibleAmount, eligibleSum, 0.001)
	assert.InDelta(t, agg.TotalReceiptAmount, totalSum, 0.001)
	assert.InDelta(t, agg.TotalMedicalExpenses, medicalSum, 0.001)
}

func TestAggregateYearCategoryBreakdown(t *testing.T) {
	expenses := []domain.MedicalExpense{
		{Date: date(2024, time.April, 1), Amount: 50, Category: domain.CategoryConsultation},
		{Date: date(2024, time.April, 2), Amount: 25, Category: domain.CategoryConsultation},
		{Date: date(2024, time.May, 9), Amount: 10, Category: domain.CategoryTest},
		{Date: date(2024, time.May, 10), Amount: 5, Category: ""}, // unknown maps to other
	}

	agg := AggregateYear(2024, nil, expenses)

	assert.Equal(t, domain.CategoryTotals{Count: 2, Amount: 75}, agg.MedicalByCategory[domain.CategoryConsultation])
	assert.Equal(t, domain.CategoryTotals{Count: 1, Amount: 10}, agg.MedicalByCategory[domain.CategoryTest])
	assert.Equal(t, domain.CategoryTotals{Count: 1, Amount: 5}, agg.MedicalByCategory[domain.CategoryOther])
	assert.NotContains(t, agg.MedicalByCategory, domain.CategoryMedication)
}

func TestAggregateYearSkipsRecordsOutsideYear(t *testing.T) {
	receipts := []domain.Receipt{
		{ReceiptDate: date(2023, time.December, 31), TotalAmount: 100, EligibleAmount: 100},
		{ReceiptDate: date(2024, time.July, 1), TotalAmount: 40, EligibleAmount: 15},
		{ReceiptDate: date(2025, time.January, 1), TotalAmount: 100, EligibleAmount: 100},
	}

	agg := AggregateYear(2024, receipts, nil)

	assert.Equal(t, 1, agg.ReceiptsCount)
	assert.InDelta(t, 15, agg.TotalEligibleAmount, 0.001)
}
