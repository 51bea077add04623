package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// PostgresMedicalExpenseRepository implements MedicalExpenseRepository using PostgreSQL
type PostgresMedicalExpenseRepository struct {
	db *pgxpool.Pool
}

// NewPostgresMedicalExpenseRepository creates a new PostgreSQL medical expense repository
func NewPostgresMedicalExpenseRepository(db *pgxpool.Pool) MedicalExpenseRepository {
	return &PostgresMedicalExpenseRepository{db: db}
}

const expenseColumns = `id, user_id, description, amount, date, category, provider, notes, created_at, updated_at`

func scanExpense(row pgx.Row) (*domain.MedicalExpense, error) {
	var e domain.MedicalExpense
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Description,
		&e.Amount,
		&e.Date,
		&e.Category,
		&e.Provider,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateExpense saves a new medical expense
func (r *PostgresMedicalExpenseRepository) CreateExpense(ctx context.Context, expense *domain.MedicalExpense) (*domain.MedicalExpense, error) {
	query := `
		INSERT INTO medical_expenses (user_id, description, amount, date, category, provider, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		expense.UserID,
		expense.Description,
		expense.Amount,
		expense.Date,
		expense.Category,
		expense.Provider,
		expense.Notes,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create medical expense: %w", err)
	}

	return expense, nil
}

// GetExpenseByID retrieves a medical expense scoped to the owner
func (r *PostgresMedicalExpenseRepository) GetExpenseByID(ctx context.Context, expenseID, userID string) (*domain.MedicalExpense, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM medical_expenses
		WHERE id = $1 AND user_id = $2
	`, expenseColumns)

	expense, err := scanExpense(r.db.QueryRow(ctx, query, expenseID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medical expense: %w", err)
	}

	return expense, nil
}

// UpdateExpense persists the expense's mutable fields
func (r *PostgresMedicalExpenseRepository) UpdateExpense(ctx context.Context, expense *domain.MedicalExpense) (*domain.MedicalExpense, error) {
	query := `
		UPDATE medical_expenses
		SET description = $1, amount = $2, date = $3, category = $4, provider = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		expense.Description,
		expense.Amount,
		expense.Date,
		expense.Category,
		expense.Provider,
		expense.Notes,
		expense.ID,
		expense.UserID,
	).Scan(&expense.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update medical expense: %w", err)
	}

	return expense, nil
}

// DeleteExpense removes a medical expense owned by the user
func (r *PostgresMedicalExpenseRepository) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medical_expenses WHERE id = $1 AND user_id = $2`, expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete medical expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// allowed sort columns for expense listing
var expenseSortColumns = map[string]string{
	"date":      "date",
	"amount":    "amount",
	"category":  "category",
	"createdAt": "created_at",
}

// ListExpenses retrieves a paginated list of the user's medical expenses
func (r *PostgresMedicalExpenseRepository) ListExpenses(ctx context.Context, filter domain.MedicalExpenseFilter) (*domain.PaginatedMedicalExpenses, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM medical_expenses WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count medical expenses: %w", err)
	}

	sortColumn, ok := expenseSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM medical_expenses
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, expenseColumns, where, sortColumn, sortOrder, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.MedicalExpense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medical expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medical expenses: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return &domain.PaginatedMedicalExpenses{
		Data: expenses,
		Pagination: domain.Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
		},
	}, nil
}

// GetExpensesInRange retrieves the user's medical expenses dated within [start, end]
func (r *PostgresMedicalExpenseRepository) GetExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.MedicalExpense, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM medical_expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`, expenseColumns)

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical expenses in range: %w", err)
	}
	defer rows.Close()

	expenses := []domain.MedicalExpense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medical expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medical expenses: %w", err)
	}

	return expenses, nil
}
