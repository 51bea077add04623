package model

import (
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// MedicalExpenseRequest represents a medical expense creation request.
// Date is YYYY-MM-DD.
type MedicalExpenseRequest struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Provider    *string `json:"provider"`
	Notes       *string `json:"notes"`
}

// ToDomain converts the request to a domain MedicalExpense
func (r *MedicalExpenseRequest) ToDomain() (*domain.MedicalExpense, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be in YYYY-MM-DD format")
	}

	return &domain.MedicalExpense{
		Description: r.Description,
		Amount:      r.Amount,
		Date:        date,
		Category:    domain.ExpenseCategory(r.Category),
		Provider:    r.Provider,
		Notes:       r.Notes,
	}, nil
}

// UpdateMedicalExpenseRequest represents a partial medical expense update.
// Absent fields are left unchanged.
type UpdateMedicalExpenseRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	Category    *string  `json:"category"`
	Provider    *string  `json:"provider"`
	Notes       *string  `json:"notes"`
}

// ToPatch converts the request to a domain MedicalExpensePatch
func (r *UpdateMedicalExpenseRequest) ToPatch() (domain.MedicalExpensePatch, error) {
	patch := domain.MedicalExpensePatch{
		Description: r.Description,
		Amount:      r.Amount,
		Provider:    r.Provider,
		Notes:       r.Notes,
	}

	if r.Date != nil {
		date, err := time.Parse("2006-01-02", *r.Date)
		if err != nil {
			return domain.MedicalExpensePatch{}, domain.NewValidationError("date", "must be in YYYY-MM-DD format")
		}
		patch.Date = &date
	}

	if r.Category != nil {
		category := domain.ExpenseCategory(*r.Category)
		patch.Category = &category
	}

	return patch, nil
}
