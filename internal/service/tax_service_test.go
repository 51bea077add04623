package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
)

// fakeReceiptRepo is an in-memory ReceiptRepository for service tests
type fakeReceiptRepo struct {
	receipts  []domain.Receipt
	replaced  map[string][]domain.ReceiptItem
	nextID    int
	updateErr error
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{replaced: map[string][]domain.ReceiptItem{}}
}

func (f *fakeReceiptRepo) CreateReceipt(_ context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	f.nextID++
	receipt.ID = string(rune('a' + f.nextID))
	receipt.CreatedAt = time.Now()
	receipt.UpdatedAt = receipt.CreatedAt
	f.receipts = append(f.receipts, *receipt)
	return receipt, nil
}

func (f *fakeReceiptRepo) GetReceiptByID(_ context.Context, receiptID, userID string) (*domain.Receipt, error) {
	for i := range f.receipts {
		if f.receipts[i].ID == receiptID && f.receipts[i].UserID == userID {
			r := f.receipts[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReceiptRepo) UpdateReceipt(_ context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.receipts {
		if f.receipts[i].ID == receipt.ID && f.receipts[i].UserID == receipt.UserID {
			f.receipts[i] = *receipt
			f.replaced[receipt.ID] = receipt.Items
			return receipt, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReceiptRepo) DeleteReceipt(_ context.Context, receiptID, userID string) error {
	for i := range f.receipts {
		if f.receipts[i].ID == receiptID && f.receipts[i].UserID == userID {
			f.receipts = append(f.receipts[:i], f.receipts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeReceiptRepo) UpdateImage(_ context.Context, receiptID, userID string, image domain.ReceiptImage) error {
	for i := range f.receipts {
		if f.receipts[i].ID == receiptID && f.receipts[i].UserID == userID {
			f.receipts[i].ImageURL = &image.URL
			f.receipts[i].ImageFileName = &image.FileName
			f.receipts[i].ImageMimeType = &image.MimeType
			f.receipts[i].ImageSize = &image.Size
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeReceiptRepo) ListReceipts(_ context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	var out []domain.Receipt
	for _, r := range f.receipts {
		if r.UserID == filter.UserID {
			out = append(out, r)
		}
	}
	return &domain.PaginatedReceipts{Data: out, Pagination: domain.Pagination{TotalItems: len(out), TotalPages: 1, CurrentPage: 1, Limit: filter.Limit}}, nil
}

func (f *fakeReceiptRepo) GetReceiptsInRange(_ context.Context, userID string, start, end time.Time) ([]domain.Receipt, error) {
	var out []domain.Receipt
	for _, r := range f.receipts {
		if r.UserID == userID && !r.ReceiptDate.Before(start) && !r.ReceiptDate.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReceiptRepo) GetMonthlyStats(_ context.Context, userID string, year int) ([]repository.MonthlyReceiptStat, error) {
	stats := make([]repository.MonthlyReceiptStat, 12)
	for m := 1; m <= 12; m++ {
		stats[m-1] = repository.MonthlyReceiptStat{Month: m}
	}
	return stats, nil
}

// fakeMedicalRepo is an in-memory MedicalExpenseRepository
type fakeMedicalRepo struct {
	expenses []domain.MedicalExpense
}

func (f *fakeMedicalRepo) CreateExpense(_ context.Context, e *domain.MedicalExpense) (*domain.MedicalExpense, error) {
	f.expenses = append(f.expenses, *e)
	return e, nil
}

func (f *fakeMedicalRepo) GetExpenseByID(_ context.Context, expenseID, userID string) (*domain.MedicalExpense, error) {
	for i := range f.expenses {
		if f.expenses[i].ID == expenseID && f.expenses[i].UserID == userID {
			e := f.expenses[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMedicalRepo) UpdateExpense(_ context.Context, e *domain.MedicalExpense) (*domain.MedicalExpense, error) {
	return e, nil
}

func (f *fakeMedicalRepo) DeleteExpense(_ context.Context, expenseID, userID string) error {
	return nil
}

func (f *fakeMedicalRepo) ListExpenses(_ context.Context, filter domain.MedicalExpenseFilter) (*domain.PaginatedMedicalExpenses, error) {
	return &domain.PaginatedMedicalExpenses{Data: f.expenses}, nil
}

func (f *fakeMedicalRepo) GetExpensesInRange(_ context.Context, userID string, start, end time.Time) ([]domain.MedicalExpense, error) {
	var out []domain.MedicalExpense
	for _, e := range f.expenses {
		if e.UserID == userID && !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeProfileRepo is an in-memory TaxProfileRepository
type fakeProfileRepo struct {
	profiles map[string]*domain.TaxProfile // key: userID|year
}

func profileKey(userID string, year int) string {
	return userID + "|" + time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

func (f *fakeProfileRepo) GetProfile(_ context.Context, userID string, year int) (*domain.TaxProfile, error) {
	if p, ok := f.profiles[profileKey(userID, year)]; ok {
		c := *p
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfileRepo) UpsertProfile(_ context.Context, profile *domain.TaxProfile) (*domain.TaxProfile, error) {
	if f.profiles == nil {
		f.profiles = map[string]*domain.TaxProfile{}
	}
	profile.ID = "profile-1"
	f.profiles[profileKey(profile.UserID, profile.Year)] = profile
	return profile, nil
}

var testRules = TaxRules{MedicalFixedCap: 2759, ThresholdRate: 0.03, EstimateRate: 0.25}

func seedTaxData(t *testing.T, receipts *fakeReceiptRepo, medical *fakeMedicalRepo) {
	t.Helper()
	receipts.receipts = []domain.Receipt{
		{ID: "r1", UserID: "u1", ReceiptDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), TotalAmount: 80, EligibleAmount: 42},
		{ID: "r2", UserID: "u1", ReceiptDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), TotalAmount: 120, EligibleAmount: 58},
		{ID: "r3", UserID: "u2", ReceiptDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), TotalAmount: 999, EligibleAmount: 999},
	}
	medical.expenses = []domain.MedicalExpense{
		{ID: "m1", UserID: "u1", Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Amount: 2900, Category: domain.CategoryConsultation},
	}
}

func TestGetTaxSummary(t *testing.T) {
	receipts := newFakeReceiptRepo()
	medical := &fakeMedicalRepo{}
	profiles := &fakeProfileRepo{}
	seedTaxData(t, receipts, medical)

	svc := NewTaxService(receipts, medical, profiles, testRules)

	summary, err := svc.GetTaxSummary(context.Background(), "u1", 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, summary.Year)
	assert.Equal(t, 2, summary.ReceiptsCount)
	assert.Equal(t, 1, summary.MedicalExpensesCount)
	assert.InDelta(t, 100, summary.TotalEligibleAmount, 0.001)
	assert.InDelta(t, 2900, summary.TotalMedicalExpenses, 0.001)
	assert.InDelta(t, 3000, summary.TotalDeductible, 0.001)

	// no profile saved: no threshold fields, but no error either
	assert.Nil(t, summary.ThresholdApplied)
	assert.Nil(t, summary.DeductibleAfterThreshold)

	// other users' data never leaks in
	assert.Less(t, summary.TotalEligibleAmount, 500.0)
}

func TestGetTaxSummaryWithProfileAppliesThreshold(t *testing.T) {
	receipts := newFakeReceiptRepo()
	medical := &fakeMedicalRepo{}
	profiles := &fakeProfileRepo{}
	seedTaxData(t, receipts, medical)

	income := 50000.0
	profiles.profiles = map[string]*domain.TaxProfile{
		profileKey("u1", 2024): {UserID: "u1", Year: 2024, NetIncome: &income, ClaimingFor: domain.ClaimSelf},
	}

	svc := NewTaxService(receipts, medical, profiles, testRules)

	summary, err := svc.GetTaxSummary(context.Background(), "u1", 2024)
	require.NoError(t, err)

	require.NotNil(t, summary.ThresholdApplied)
	require.NotNil(t, summary.DeductibleAfterThreshold)
	// min(2759, 3% of 50000) = 1500; 3000 - 1500 = 1500
	assert.InDelta(t, 1500, *summary.ThresholdApplied, 0.001)
	assert.InDelta(t, 1500, *summary.DeductibleAfterThreshold, 0.001)
}

func TestGetDeductionEstimateWithoutIncomeFails(t *testing.T) {
	receipts := newFakeReceiptRepo()
	medical := &fakeMedicalRepo{}
	profiles := &fakeProfileRepo{}
	seedTaxData(t, receipts, medical)

	svc := NewTaxService(receipts, medical, profiles, testRules)

	_, err := svc.GetDeductionEstimate(context.Background(), "u1", 2024, nil)
	assert.ErrorIs(t, err, domain.ErrIncomeUnknown)
}

func TestGetDeductionEstimateWithOverride(t *testing.T) {
	receipts := newFakeReceiptRepo()
	medical := &fakeMedicalRepo{}
	profiles := &fakeProfileRepo{}
	seedTaxData(t, receipts, medical)

	svc := NewTaxService(receipts, medical, profiles, testRules)

	income := 200000.0
	estimate, err := svc.GetDeductionEstimate(context.Background(), "u1", 2024, &income)
	require.NoError(t, err)

	// 3% of 200000 is 6000, so the fixed cap wins
	assert.InDelta(t, 2759, estimate.Thresholds.MedicalExpenseThreshold, 0.001)
	assert.InDelta(t, 6000, estimate.Thresholds.ThresholdPercent, 0.001)
	assert.InDelta(t, 3000, estimate.Amounts.TotalEligibleExpenses, 0.001)
	assert.InDelta(t, 241, estimate.Amounts.TotalClaimable, 0.001)
	assert.InDelta(t, 0.25, estimate.Estimates.TaxRate, 0.001)
	assert.InDelta(t, 60.25, estimate.Estimates.EstimatedTaxSavings, 0.001)
}

func TestGetDeductionEstimateUsesDependantIncome(t *testing.T) {
	receipts := newFakeReceiptRepo()
	medical := &fakeMedicalRepo{}
	profiles := &fakeProfileRepo{}
	seedTaxData(t, receipts, medical)

	dependantIncome := 20000.0
	profiles.profiles = map[string]*domain.TaxProfile{
		profileKey("u1", 2024): {
			UserID: "u1", Year: 2024,
			DependantIncome: &dependantIncome,
			ClaimingFor:     domain.ClaimDependant,
		},
	}

	svc := NewTaxService(receipts, medical, profiles, testRules)

	estimate, err := svc.GetDeductionEstimate(context.Background(), "u1", 2024, nil)
	require.NoError(t, err)

	// 3% of 20000 = 600
	assert.InDelta(t, 600, estimate.Thresholds.MedicalExpenseThreshold, 0.001)
	assert.InDelta(t, 2400, estimate.Amounts.TotalClaimable, 0.001)
}

func TestGetDeductionEstimateRejectsNegativeIncome(t *testing.T) {
	svc := NewTaxService(newFakeReceiptRepo(), &fakeMedicalRepo{}, &fakeProfileRepo{}, testRules)

	income := -1.0
	_, err := svc.GetDeductionEstimate(context.Background(), "u1", 2024, &income)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSaveProfileValidation(t *testing.T) {
	profiles := &fakeProfileRepo{}
	svc := NewTaxService(newFakeReceiptRepo(), &fakeMedicalRepo{}, profiles, testRules)

	_, err := svc.SaveProfile(context.Background(), "u1", &domain.TaxProfile{Year: 1990})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	negative := -5.0
	_, err = svc.SaveProfile(context.Background(), "u1", &domain.TaxProfile{Year: 2024, NetIncome: &negative})
	require.Error(t, err)

	income := 60000.0
	saved, err := svc.SaveProfile(context.Background(), "u1", &domain.TaxProfile{Year: 2024, NetIncome: &income})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSelf, saved.ClaimingFor) // defaulted
	assert.Equal(t, "u1", saved.UserID)
}
