package domain

import (
	"time"
)

// ExpenseCategory classifies a medical expense
type ExpenseCategory string

// Valid medical expense categories
const (
	CategoryConsultation ExpenseCategory = "consultation"
	CategoryMedication   ExpenseCategory = "medication"
	CategoryTest         ExpenseCategory = "test"
	CategorySupplement   ExpenseCategory = "supplement"
	CategoryOther        ExpenseCategory = "other"
)

// ExpenseCategories lists every valid category, in display order
var ExpenseCategories = []ExpenseCategory{
	CategoryConsultation,
	CategoryMedication,
	CategoryTest,
	CategorySupplement,
	CategoryOther,
}

// Valid reports whether c is a known expense category
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryConsultation, CategoryMedication, CategoryTest, CategorySupplement, CategoryOther:
		return true
	}
	return false
}

// MedicalExpense represents a celiac-related medical expense
type MedicalExpense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    ExpenseCategory `json:"category"`
	Provider    *string         `json:"provider,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MedicalExpensePatch carries a partial update; nil fields are unchanged
type MedicalExpensePatch struct {
	Description *string
	Amount      *float64
	Date        *time.Time
	Category    *ExpenseCategory
	Provider    *string
	Notes       *string
}

// MedicalExpenseFilter represents filters for querying medical expenses
type MedicalExpenseFilter struct {
	UserID    string
	Category  string
	Year      *int
	Month     *int
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// PaginatedMedicalExpenses represents a paginated list of medical expenses
type PaginatedMedicalExpenses struct {
	Data       []MedicalExpense `json:"data"`
	Pagination Pagination       `json:"pagination"`
}
