package service

import (
	"context"
	"strings"
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
	"github.com/celiacapp/celiac-tracker-service/internal/taxcalc"
)

// MedicalExpenseStats summarizes a user's medical expenses for a year
type MedicalExpenseStats struct {
	Year          int                                              `json:"year"`
	TotalAmount   float64                                          `json:"totalAmount"`
	ExpensesCount int                                              `json:"expensesCount"`
	CategoryData  map[domain.ExpenseCategory]domain.CategoryTotals `json:"categoryData"`
	MonthlyTotals []domain.MonthlyExpenseTotals                    `json:"monthlyTotals"`
}

// MedicalExpenseService defines the interface for medical expense business logic
type MedicalExpenseService interface {
	CreateExpense(ctx context.Context, userID string, expense *domain.MedicalExpense) (*domain.MedicalExpense, error)
	GetExpense(ctx context.Context, expenseID, userID string) (*domain.MedicalExpense, error)
	UpdateExpense(ctx context.Context, expenseID, userID string, patch domain.MedicalExpensePatch) (*domain.MedicalExpense, error)
	DeleteExpense(ctx context.Context, expenseID, userID string) error
	ListExpenses(ctx context.Context, filter domain.MedicalExpenseFilter) (*domain.PaginatedMedicalExpenses, error)
	ListCategories() []string
	GetStats(ctx context.Context, userID string, year int) (*MedicalExpenseStats, error)
}

// medicalExpenseService implements MedicalExpenseService
type medicalExpenseService struct {
	repo repository.MedicalExpenseRepository
}

// NewMedicalExpenseService creates a new medical expense service
func NewMedicalExpenseService(repo repository.MedicalExpenseRepository) MedicalExpenseService {
	return &medicalExpenseService{repo: repo}
}

func validateExpense(expense *domain.MedicalExpense) error {
	if strings.TrimSpace(expense.Description) == "" {
		return domain.NewValidationError("description", "is required")
	}
	if expense.Amount < 0 {
		return domain.NewValidationError("amount", "cannot be negative")
	}
	if expense.Date.IsZero() {
		return domain.NewValidationError("date", "is required")
	}
	if !expense.Category.Valid() {
		return domain.NewValidationError("category", "must be one of consultation, medication, test, supplement, other")
	}
	return nil
}

// CreateExpense validates and saves a new medical expense
func (s *medicalExpenseService) CreateExpense(ctx context.Context, userID string, expense *domain.MedicalExpense) (*domain.MedicalExpense, error) {
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	expense.UserID = userID
	expense.Description = strings.TrimSpace(expense.Description)
	return s.repo.CreateExpense(ctx, expense)
}

// GetExpense retrieves a medical expense owned by the user
func (s *medicalExpenseService) GetExpense(ctx context.Context, expenseID, userID string) (*domain.MedicalExpense, error) {
	return s.repo.GetExpenseByID(ctx, expenseID, userID)
}

// UpdateExpense applies a partial update
func (s *medicalExpenseService) UpdateExpense(ctx context.Context, expenseID, userID string, patch domain.MedicalExpensePatch) (*domain.MedicalExpense, error) {
	expense, err := s.repo.GetExpenseByID(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		expense.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		expense.Amount = *patch.Amount
	}
	if patch.Date != nil {
		expense.Date = *patch.Date
	}
	if patch.Category != nil {
		expense.Category = *patch.Category
	}
	if patch.Provider != nil {
		expense.Provider = patch.Provider
	}
	if patch.Notes != nil {
		expense.Notes = patch.Notes
	}

	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	return s.repo.UpdateExpense(ctx, expense)
}

// DeleteExpense removes a medical expense owned by the user
func (s *medicalExpenseService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	return s.repo.DeleteExpense(ctx, expenseID, userID)
}

// ListExpenses retrieves a paginated expense list
func (s *medicalExpenseService) ListExpenses(ctx context.Context, filter domain.MedicalExpenseFilter) (*domain.PaginatedMedicalExpenses, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListExpenses(ctx, filter)
}

// ListCategories returns the fixed set of expense categories in display order
func (s *medicalExpenseService) ListCategories() []string {
	categories := make([]string, len(domain.ExpenseCategories))
	for i, category := range domain.ExpenseCategories {
		categories[i] = string(category)
	}
	return categories
}

// GetStats summarizes the user's medical expenses for a year
func (s *medicalExpenseService) GetStats(ctx context.Context, userID string, year int) (*MedicalExpenseStats, error) {
	start, end := taxcalc.YearRange(year, time.UTC)
	expenses, err := s.repo.GetExpensesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	agg := taxcalc.AggregateYear(year, nil, expenses)

	monthly := make([]domain.MonthlyExpenseTotals, 12)
	for i, bucket := range agg.MonthlyBreakdown {
		monthly[i] = bucket.Medical
	}

	return &MedicalExpenseStats{
		Year:          year,
		TotalAmount:   agg.TotalMedicalExpenses,
		ExpensesCount: agg.MedicalExpensesCount,
		CategoryData:  agg.MedicalByCategory,
		MonthlyTotals: monthly,
	}, nil
}
