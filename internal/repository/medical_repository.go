package repository

import (
	"context"
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// MedicalExpenseRepository defines the interface for medical expense data operations
type MedicalExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *domain.MedicalExpense) (*domain.MedicalExpense, error)
	GetExpenseByID(ctx context.Context, expenseID, userID string) (*domain.MedicalExpense, error)
	UpdateExpense(ctx context.Context, expense *domain.MedicalExpense) (*domain.MedicalExpense, error)
	DeleteExpense(ctx context.Context, expenseID, userID string) error

	ListExpenses(ctx context.Context, filter domain.MedicalExpenseFilter) (*domain.PaginatedMedicalExpenses, error)
	GetExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.MedicalExpense, error)
}
