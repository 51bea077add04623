package domain

import (
	"time"
)

// ClaimingParty identifies whose income the deduction is computed against
type ClaimingParty string

// Valid claiming parties
const (
	ClaimSelf      ClaimingParty = "self"
	ClaimDependant ClaimingParty = "dependant"
)

// Valid reports whether p is a known claiming party
func (p ClaimingParty) Valid() bool {
	return p == ClaimSelf || p == ClaimDependant
}

// TaxProfile holds per-year income inputs for the threshold calculation.
// One profile per (user, year); saves are upserts on that key.
type TaxProfile struct {
	ID              string        `json:"id"`
	UserID          string        `json:"-"`
	Year            int           `json:"year"`
	NetIncome       *float64      `json:"netIncome,omitempty"`
	DependantIncome *float64      `json:"dependantIncome,omitempty"`
	ClaimingFor     ClaimingParty `json:"claimingFor"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ClaimIncome returns the income of the claiming party, or nil when that
// income has not been provided.
func (p *TaxProfile) ClaimIncome() *float64 {
	if p == nil {
		return nil
	}
	if p.ClaimingFor == ClaimDependant {
		return p.DependantIncome
	}
	return p.NetIncome
}

// MonthlyBreakdownEntry is one calendar-month bucket of a tax year
type MonthlyBreakdownEntry struct {
	Month     int                  `json:"month"` // 1..12
	MonthName string               `json:"monthName"`
	Receipts  MonthlyReceiptTotals `json:"receipts"`
	Medical   MonthlyExpenseTotals `json:"medical"`
}

// MonthlyReceiptTotals aggregates receipts within one month
type MonthlyReceiptTotals struct {
	Count          int     `json:"count"`
	TotalAmount    float64 `json:"totalAmount"`
	EligibleAmount float64 `json:"eligibleAmount"`
}

// MonthlyExpenseTotals aggregates medical expenses within one month
type MonthlyExpenseTotals struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

// CategoryTotals aggregates medical expenses of one category
type CategoryTotals struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// TaxSummary answers "what can this user claim for year Y". TotalDeductible
// is the pre-threshold claimable total (gluten-free incremental cost plus
// medical expenses); the threshold fields are only present when an income is
// on file for the year.
type TaxSummary struct {
	Year                     int                                `json:"year"`
	TotalEligibleAmount      float64                            `json:"totalEligibleAmount"`
	TotalMedicalExpenses     float64                            `json:"totalMedicalExpenses"`
	TotalDeductible          float64                            `json:"totalDeductible"`
	ReceiptsCount            int                                `json:"receiptsCount"`
	MedicalExpensesCount     int                                `json:"medicalExpensesCount"`
	MonthlyBreakdown         []MonthlyBreakdownEntry            `json:"monthlyBreakdown"`
	MedicalByCategory        map[ExpenseCategory]CategoryTotals `json:"medicalByCategory"`
	ThresholdApplied         *float64                           `json:"thresholdApplied,omitempty"`
	DeductibleAfterThreshold *float64                           `json:"deductibleAfterThreshold,omitempty"`
}

// DeductionEstimate is the full threshold breakdown for a tax year
type DeductionEstimate struct {
	Year       int                `json:"year"`
	Income     float64            `json:"income"`
	Thresholds EstimateThresholds `json:"thresholds"`
	Amounts    EstimateAmounts    `json:"amounts"`
	Estimates  EstimateSavings    `json:"estimates"`
}

// EstimateThresholds exposes the threshold actually applied and the raw
// percentage figure it was derived from
type EstimateThresholds struct {
	MedicalExpenseThreshold float64 `json:"medicalExpenseThreshold"`
	ThresholdPercent        float64 `json:"thresholdPercent"`
}

// EstimateAmounts exposes the raw and post-threshold claim amounts
type EstimateAmounts struct {
	TotalEligibleAmount   float64 `json:"totalEligibleAmount"`
	TotalMedicalExpenses  float64 `json:"totalMedicalExpenses"`
	TotalEligibleExpenses float64 `json:"totalEligibleExpenses"`
	TotalClaimable        float64 `json:"totalClaimable"`
}

// EstimateSavings is a rough tax-savings projection; this is an estimate
// only, not filing advice
type EstimateSavings struct {
	TaxRate             float64 `json:"taxRate"`
	EstimatedTaxSavings float64 `json:"estimatedTaxSavings"`
}
