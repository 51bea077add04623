package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/celiacapp/celiac-tracker-service/internal/database"
	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// PostgresReceiptRepository implements ReceiptRepository using PostgreSQL
type PostgresReceiptRepository struct {
	db *pgxpool.Pool
}

// NewPostgresReceiptRepository creates a new PostgreSQL receipt repository
func NewPostgresReceiptRepository(db *pgxpool.Pool) ReceiptRepository {
	return &PostgresReceiptRepository{db: db}
}

// CreateReceipt saves a new receipt and its items in one transaction
func (r *PostgresReceiptRepository) CreateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	err := database.ExecuteTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO receipts (user_id, store_name, receipt_date, total_amount, eligible_amount,
				image_url, image_file_name, image_mime_type, image_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`, receipt.UserID, receipt.StoreName, receipt.ReceiptDate, receipt.TotalAmount, receipt.EligibleAmount,
			receipt.ImageURL, receipt.ImageFileName, receipt.ImageMimeType, receipt.ImageSize).Scan(
			&receipt.ID, &receipt.CreatedAt, &receipt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}

		return insertItems(ctx, tx, receipt.ID, receipt.Items)
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// insertItems inserts the receipt's items inside the caller's transaction
func insertItems(ctx context.Context, tx pgx.Tx, receiptID string, items []domain.ReceiptItem) error {
	for i := range items {
		item := &items[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO receipt_items (receipt_id, name, price, quantity, is_eligible,
				purchased_product_id, comparison_product_id, comparison_price, incremental_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, receiptID, item.Name, item.Price, item.Quantity, item.IsEligible,
			item.PurchasedProductID, item.ComparisonProductID, item.ComparisonPrice, item.IncrementalCost).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}
	return nil
}

// GetReceiptByID retrieves a receipt with its items, scoped to the owner
func (r *PostgresReceiptRepository) GetReceiptByID(ctx context.Context, receiptID, userID string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, store_name, receipt_date, total_amount, eligible_amount,
			image_url, image_file_name, image_mime_type, image_size, created_at, updated_at
		FROM receipts
		WHERE id = $1 AND user_id = $2
	`, receiptID, userID).Scan(
		&receipt.ID, &receipt.UserID, &receipt.StoreName, &receipt.ReceiptDate,
		&receipt.TotalAmount, &receipt.EligibleAmount,
		&receipt.ImageURL, &receipt.ImageFileName, &receipt.ImageMimeType, &receipt.ImageSize,
		&receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	items, err := r.getItems(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return &receipt, nil
}

// getItems loads a receipt's items
func (r *PostgresReceiptRepository) getItems(ctx context.Context, receiptID string) ([]domain.ReceiptItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, quantity, is_eligible,
			purchased_product_id, comparison_product_id, comparison_price, incremental_cost
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY created_at, id
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}
	defer rows.Close()

	items := []domain.ReceiptItem{}
	for rows.Next() {
		var item domain.ReceiptItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Price, &item.Quantity, &item.IsEligible,
			&item.PurchasedProductID, &item.ComparisonProductID, &item.ComparisonPrice, &item.IncrementalCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt items: %w", err)
	}

	return items, nil
}

// UpdateReceipt persists the receipt's scalar fields and swaps its item set
// for receipt.Items in one transaction, so the stored totals and items always
// come from the same write. An empty item set clears the stored items.
func (r *PostgresReceiptRepository) UpdateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	err := database.ExecuteTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE receipts
			SET store_name = $1, receipt_date = $2, total_amount = $3, eligible_amount = $4, updated_at = NOW()
			WHERE id = $5 AND user_id = $6
			RETURNING updated_at
		`, receipt.StoreName, receipt.ReceiptDate, receipt.TotalAmount, receipt.EligibleAmount,
			receipt.ID, receipt.UserID).Scan(&receipt.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to update receipt: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM receipt_items WHERE receipt_id = $1`, receipt.ID); err != nil {
			return fmt.Errorf("failed to delete receipt items: %w", err)
		}

		return insertItems(ctx, tx, receipt.ID, receipt.Items)
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// DeleteReceipt removes a receipt; items go with it via ON DELETE CASCADE
func (r *PostgresReceiptRepository) DeleteReceipt(ctx context.Context, receiptID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM receipts WHERE id = $1 AND user_id = $2`, receiptID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateImage stores the uploaded image reference on the receipt
func (r *PostgresReceiptRepository) UpdateImage(ctx context.Context, receiptID, userID string, image domain.ReceiptImage) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE receipts
		SET image_url = $1, image_file_name = $2, image_mime_type = $3, image_size = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`, image.URL, image.FileName, image.MimeType, image.Size, receiptID, userID)
	if err != nil {
		return fmt.Errorf("failed to update receipt image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListReceipts retrieves a paginated list of the user's receipts with items
func (r *PostgresReceiptRepository) ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	conditions := "user_id = $1"
	args := []interface{}{filter.UserID}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions += fmt.Sprintf(" AND receipt_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions += fmt.Sprintf(" AND receipt_date <= $%d", len(args))
	}
	if filter.StoreName != "" {
		args = append(args, "%"+filter.StoreName+"%")
		conditions += fmt.Sprintf(" AND store_name ILIKE $%d", len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM receipts WHERE %s`, conditions)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, store_name, receipt_date, total_amount, eligible_amount,
			image_url, image_file_name, image_mime_type, image_size, created_at, updated_at
		FROM receipts
		WHERE %s
		ORDER BY receipt_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var receipt domain.Receipt
		if err := rows.Scan(
			&receipt.ID, &receipt.UserID, &receipt.StoreName, &receipt.ReceiptDate,
			&receipt.TotalAmount, &receipt.EligibleAmount,
			&receipt.ImageURL, &receipt.ImageFileName, &receipt.ImageMimeType, &receipt.ImageSize,
			&receipt.CreatedAt, &receipt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	for i := range receipts {
		items, err := r.getItems(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return &domain.PaginatedReceipts{
		Data: receipts,
		Pagination: domain.Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
		},
	}, nil
}

// GetReceiptsInRange retrieves the user's receipts (with items) whose date
// falls inside [start, end]
func (r *PostgresReceiptRepository) GetReceiptsInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Receipt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, store_name, receipt_date, total_amount, eligible_amount,
			image_url, image_file_name, image_mime_type, image_size, created_at, updated_at
		FROM receipts
		WHERE user_id = $1 AND receipt_date >= $2 AND receipt_date <= $3
		ORDER BY receipt_date
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts in range: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var receipt domain.Receipt
		if err := rows.Scan(
			&receipt.ID, &receipt.UserID, &receipt.StoreName, &receipt.ReceiptDate,
			&receipt.TotalAmount, &receipt.EligibleAmount,
			&receipt.ImageURL, &receipt.ImageFileName, &receipt.ImageMimeType, &receipt.ImageSize,
			&receipt.CreatedAt, &receipt.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	for i := range receipts {
		items, err := r.getItems(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}

	return receipts, nil
}

// GetMonthlyStats returns per-month receipt counts and totals for a year
func (r *PostgresReceiptRepository) GetMonthlyStats(ctx context.Context, userID string, year int) ([]MonthlyReceiptStat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(MONTH FROM receipt_date)::int AS month,
			COUNT(*) AS count,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COALESCE(SUM(eligible_amount), 0) AS eligible_amount
		FROM receipts
		WHERE user_id = $1 AND EXTRACT(YEAR FROM receipt_date) = $2
		GROUP BY month
		ORDER BY month
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[int]MonthlyReceiptStat)
	for rows.Next() {
		var stat MonthlyReceiptStat
		if err := rows.Scan(&stat.Month, &stat.Count, &stat.TotalAmount, &stat.EligibleAmount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		byMonth[stat.Month] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly stats: %w", err)
	}

	// Emit all twelve months so callers always get a full year
	stats := make([]MonthlyReceiptStat, 12)
	for m := 1; m <= 12; m++ {
		stat, ok := byMonth[m]
		if !ok {
			stat = MonthlyReceiptStat{Month: m}
		}
		stats[m-1] = stat
	}

	return stats, nil
}
