package taxcalc

import (
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// YearAggregate is the per-year rollup of receipts and medical expenses
type YearAggregate struct {
	Year                 int
	TotalReceiptAmount   float64
	TotalEligibleAmount  float64
	TotalMedicalExpenses float64
	ReceiptsCount        int
	MedicalExpensesCount int
	MonthlyBreakdown     []domain.MonthlyBreakdownEntry
	MedicalByCategory    map[domain.ExpenseCategory]domain.CategoryTotals
}

// YearRange returns the inclusive calendar-year boundaries [Jan 1 00:00,
// Dec 31 23:59:59.999] in the given location.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, 999_000_000, loc)
	return start, end
}

// AggregateYear rolls up receipts and medical expenses for a tax year:
// totals, counts, twelve disjoint monthly buckets, and a per-category
// breakdown of medical expenses. Records dated outside the year are skipped,
// so the buckets always partition the reported totals exactly.
func AggregateYear(year int, receipts []domain.Receipt, expenses []domain.MedicalExpense) YearAggregate {
	agg := YearAggregate{
		Year:              year,
		MonthlyBreakdown:  make([]domain.MonthlyBreakdownEntry, 12),
		MedicalByCategory: make(map[domain.ExpenseCategory]domain.CategoryTotals),
	}
	for m := 0; m < 12; m++ {
		agg.MonthlyBreakdown[m] = domain.MonthlyBreakdownEntry{
			Month:     m + 1,
			MonthName: time.Month(m + 1).String(),
		}
	}

	for _, r := range receipts {
		if r.ReceiptDate.Year() != year {
			continue
		}
		agg.ReceiptsCount++
		agg.TotalReceiptAmount += r.TotalAmount
		agg.TotalEligibleAmount += r.EligibleAmount

		bucket := &agg.MonthlyBreakdown[int(r.ReceiptDate.Month())-1]
		bucket.Receipts.Count++
		bucket.Receipts.TotalAmount = RoundCents(bucket.Receipts.TotalAmount + r.TotalAmount)
		bucket.Receipts.EligibleAmount = RoundCents(bucket.Receipts.EligibleAmount + r.EligibleAmount)
	}

	for _, e := range expenses {
		if e.Date.Year() != year {
			continue
		}
		agg.MedicalExpensesCount++
		agg.TotalMedicalExpenses += e.Amount

		bucket := &agg.MonthlyBreakdown[int(e.Date.Month())-1]
		bucket.Medical.Count++
		bucket.Medical.TotalAmount = RoundCents(bucket.Medical.TotalAmount + e.Amount)

		category := e.Category
		if !category.Valid() {
			category = domain.CategoryOther
		}
		totals := agg.MedicalByCategory[category]
		totals.Count++
		totals.Amount = RoundCents(totals.Amount + e.Amount)
		agg.MedicalByCategory[category] = totals
	}

	agg.TotalReceiptAmount = RoundCents(agg.TotalReceiptAmount)
	agg.TotalEligibleAmount = RoundCents(agg.TotalEligibleAmount)
	agg.TotalMedicalExpenses = RoundCents(agg.TotalMedicalExpenses)
	return agg
}
