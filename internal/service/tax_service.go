package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
	"github.com/celiacapp/celiac-tracker-service/internal/taxcalc"
)

// TaxRules carries the CRA constants used by the threshold calculation.
// MedicalFixedCap is the published fixed dollar cap (2759 for 2023), updated
// yearly through configuration.
type TaxRules struct {
	MedicalFixedCap float64
	ThresholdRate   float64
	EstimateRate    float64
}

// TaxService answers "what can this user deduct for year Y". All operations
// other than SaveProfile are pure read/compute.
type TaxService interface {
	GetTaxSummary(ctx context.Context, userID string, year int) (*domain.TaxSummary, error)

	// GetDeductionEstimate computes the full threshold breakdown. The income
	// override takes precedence over the saved profile; with neither, it
	// fails with domain.ErrIncomeUnknown so callers can prompt for the
	// missing income instead of showing a number computed against zero.
	GetDeductionEstimate(ctx context.Context, userID string, year int, incomeOverride *float64) (*domain.DeductionEstimate, error)

	GetProfile(ctx context.Context, userID string, year int) (*domain.TaxProfile, error)
	SaveProfile(ctx context.Context, userID string, profile *domain.TaxProfile) (*domain.TaxProfile, error)
}

// taxService implements TaxService
type taxService struct {
	receiptRepo repository.ReceiptRepository
	medicalRepo repository.MedicalExpenseRepository
	profileRepo repository.TaxProfileRepository
	rules       TaxRules
}

// NewTaxService creates a new tax service
func NewTaxService(
	receiptRepo repository.ReceiptRepository,
	medicalRepo repository.MedicalExpenseRepository,
	profileRepo repository.TaxProfileRepository,
	rules TaxRules,
) TaxService {
	return &taxService{
		receiptRepo: receiptRepo,
		medicalRepo: medicalRepo,
		profileRepo: profileRepo,
		rules:       rules,
	}
}

// aggregate fetches the year's records and rolls them up
func (s *taxService) aggregate(ctx context.Context, userID string, year int) (taxcalc.YearAggregate, error) {
	start, end := taxcalc.YearRange(year, time.UTC)

	receipts, err := s.receiptRepo.GetReceiptsInRange(ctx, userID, start, end)
	if err != nil {
		return taxcalc.YearAggregate{}, fmt.Errorf("failed to fetch receipts: %w", err)
	}

	expenses, err := s.medicalRepo.GetExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return taxcalc.YearAggregate{}, fmt.Errorf("failed to fetch medical expenses: %w", err)
	}

	return taxcalc.AggregateYear(year, receipts, expenses), nil
}

// claimIncome resolves the income of the claiming party from the saved
// profile, or nil when no usable income is on file
func (s *taxService) claimIncome(ctx context.Context, userID string, year int) (*float64, error) {
	profile, err := s.profileRepo.GetProfile(ctx, userID, year)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile.ClaimIncome(), nil
}

// GetTaxSummary aggregates the year and reports the pre-threshold claimable
// total; the post-threshold figure is included only when an income is on
// file, never silently computed against zero income.
func (s *taxService) GetTaxSummary(ctx context.Context, userID string, year int) (*domain.TaxSummary, error) {
	agg, err := s.aggregate(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	summary := &domain.TaxSummary{
		Year:                 year,
		TotalEligibleAmount:  agg.TotalEligibleAmount,
		TotalMedicalExpenses: agg.TotalMedicalExpenses,
		TotalDeductible:      taxcalc.RoundCents(agg.TotalEligibleAmount + agg.TotalMedicalExpenses),
		ReceiptsCount:        agg.ReceiptsCount,
		MedicalExpensesCount: agg.MedicalExpensesCount,
		MonthlyBreakdown:     agg.MonthlyBreakdown,
		MedicalByCategory:    agg.MedicalByCategory,
	}

	income, err := s.claimIncome(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if income != nil {
		threshold := taxcalc.Threshold(*income, s.rules.MedicalFixedCap, s.rules.ThresholdRate)
		deductible := taxcalc.Deductible(summary.TotalDeductible, threshold)
		summary.ThresholdApplied = &threshold
		summary.DeductibleAfterThreshold = &deductible
	}

	return summary, nil
}

// GetDeductionEstimate applies the CRA threshold rule to the year's combined
// eligible expenses and projects the resulting tax savings
func (s *taxService) GetDeductionEstimate(ctx context.Context, userID string, year int, incomeOverride *float64) (*domain.DeductionEstimate, error) {
	income := incomeOverride
	if income == nil {
		saved, err := s.claimIncome(ctx, userID, year)
		if err != nil {
			return nil, err
		}
		income = saved
	}
	if income == nil {
		return nil, domain.ErrIncomeUnknown
	}
	if *income < 0 {
		return nil, domain.NewValidationError("income", "cannot be negative")
	}

	agg, err := s.aggregate(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	totalEligibleExpenses := taxcalc.RoundCents(agg.TotalEligibleAmount + agg.TotalMedicalExpenses)
	thresholdPercent := taxcalc.RoundCents(*income * s.rules.ThresholdRate)
	threshold := taxcalc.Threshold(*income, s.rules.MedicalFixedCap, s.rules.ThresholdRate)
	totalClaimable := taxcalc.Deductible(totalEligibleExpenses, threshold)

	return &domain.DeductionEstimate{
		Year:   year,
		Income: *income,
		Thresholds: domain.EstimateThresholds{
			MedicalExpenseThreshold: threshold,
			ThresholdPercent:        thresholdPercent,
		},
		Amounts: domain.EstimateAmounts{
			TotalEligibleAmount:   agg.TotalEligibleAmount,
			TotalMedicalExpenses:  agg.TotalMedicalExpenses,
			TotalEligibleExpenses: totalEligibleExpenses,
			TotalClaimable:        totalClaimable,
		},
		Estimates: domain.EstimateSavings{
			TaxRate:             s.rules.EstimateRate,
			EstimatedTaxSavings: taxcalc.RoundCents(totalClaimable * s.rules.EstimateRate),
		},
	}, nil
}

// GetProfile retrieves the saved tax profile for a year
func (s *taxService) GetProfile(ctx context.Context, userID string, year int) (*domain.TaxProfile, error) {
	return s.profileRepo.GetProfile(ctx, userID, year)
}

// SaveProfile validates and upserts the (user, year) tax profile
func (s *taxService) SaveProfile(ctx context.Context, userID string, profile *domain.TaxProfile) (*domain.TaxProfile, error) {
	currentYear := time.Now().Year()
	if profile.Year < 2000 || profile.Year > currentYear+1 {
		return nil, domain.NewValidationError("year", fmt.Sprintf("must be between 2000 and %d", currentYear+1))
	}
	if profile.NetIncome != nil && *profile.NetIncome < 0 {
		return nil, domain.NewValidationError("netIncome", "cannot be negative")
	}
	if profile.DependantIncome != nil && *profile.DependantIncome < 0 {
		return nil, domain.NewValidationError("dependantIncome", "cannot be negative")
	}
	if profile.ClaimingFor == "" {
		profile.ClaimingFor = domain.ClaimSelf
	}
	if !profile.ClaimingFor.Valid() {
		return nil, domain.NewValidationError("claimingFor", "must be self or dependant")
	}

	profile.UserID = userID
	return s.profileRepo.UpsertProfile(ctx, profile)
}
