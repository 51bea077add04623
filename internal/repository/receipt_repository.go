package repository

import (
	"context"
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// MonthlyReceiptStat is one month's receipt totals, as returned by the
// monthly stats query
type MonthlyReceiptStat struct {
	Month          int     `json:"month"`
	Count          int     `json:"count"`
	TotalAmount    float64 `json:"totalAmount"`
	EligibleAmount float64 `json:"eligibleAmount"`
}

// ReceiptRepository defines the interface for receipt data operations.
// Receipts own their items: creating a receipt inserts its items in the same
// transaction, updating one swaps the full item set and the totals in the
// same transaction, and deleting one cascades to its items.
type ReceiptRepository interface {
	CreateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error)
	GetReceiptByID(ctx context.Context, receiptID, userID string) (*domain.Receipt, error)

	// UpdateReceipt persists the scalar fields and replaces the stored items
	// with receipt.Items as a single all-or-nothing unit. An empty item set
	// clears the stored items.
	UpdateReceipt(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error)

	DeleteReceipt(ctx context.Context, receiptID, userID string) error

	UpdateImage(ctx context.Context, receiptID, userID string, image domain.ReceiptImage) error

	ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error)
	GetReceiptsInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Receipt, error)
	GetMonthlyStats(ctx context.Context, userID string, year int) ([]MonthlyReceiptStat, error)
}
