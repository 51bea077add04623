package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
	"github.com/celiacapp/celiac-tracker-service/internal/taxcalc"
)

// ImageUploader stores receipt images and returns their public URL
type ImageUploader interface {
	UploadImage(data []byte, fileName, contentType string) (string, error)
}

// ReceiptInput carries the caller-supplied fields for a receipt create or
// full update. TotalAmount and EligibleAmount are only honored when the item
// list is empty; with items present the totals are recomputed server-side.
type ReceiptInput struct {
	StoreName      string
	ReceiptDate    time.Time
	TotalAmount    float64
	EligibleAmount float64
	Items          []domain.ReceiptItem
}

// ReceiptService defines the interface for receipt business logic
type ReceiptService interface {
	CreateReceipt(ctx context.Context, userID string, input ReceiptInput) (*domain.Receipt, error)
	GetReceipt(ctx context.Context, receiptID, userID string) (*domain.Receipt, error)
	UpdateReceipt(ctx context.Context, receiptID, userID string, input ReceiptInput) (*domain.Receipt, error)
	DeleteReceipt(ctx context.Context, receiptID, userID string) error
	ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error)

	// RecalculateTotals derives {totalAmount, eligibleAmount} from an item
	// list without persisting anything.
	RecalculateTotals(items []domain.ReceiptItem) (taxcalc.ReceiptTotals, error)

	UploadImage(ctx context.Context, receiptID, userID string, data []byte, fileName, mimeType string) (*domain.Receipt, error)
	GetMonthlyStats(ctx context.Context, userID string, year int) ([]repository.MonthlyReceiptStat, error)
}

// receiptService implements ReceiptService
type receiptService struct {
	repo     repository.ReceiptRepository
	uploader ImageUploader
}

// NewReceiptService creates a new receipt service
func NewReceiptService(repo repository.ReceiptRepository, uploader ImageUploader) ReceiptService {
	return &receiptService{repo: repo, uploader: uploader}
}

// prepareReceipt validates the input and resolves the totals to persist.
// When items are present each gets its incrementalCost derived and the
// receipt totals are recomputed from the items; caller-declared totals are
// only kept for item-less receipts.
func prepareReceipt(input *ReceiptInput) error {
	if strings.TrimSpace(input.StoreName) == "" {
		return domain.NewValidationError("storeName", "is required")
	}
	if input.ReceiptDate.IsZero() {
		return domain.NewValidationError("receiptDate", "is required")
	}

	if len(input.Items) == 0 {
		if input.TotalAmount < 0 {
			return domain.NewValidationError("totalAmount", "cannot be negative")
		}
		if input.EligibleAmount < 0 {
			return domain.NewValidationError("eligibleAmount", "cannot be negative")
		}
		if input.EligibleAmount > input.TotalAmount {
			return domain.NewValidationError("eligibleAmount", "cannot exceed total amount")
		}
		return nil
	}

	for i := range input.Items {
		item := &input.Items[i]
		if err := taxcalc.ValidateItem(*item); err != nil {
			return err
		}
		item.IncrementalCost = taxcalc.IncrementalCost(item.Price, item.ComparisonPrice)
	}

	totals, err := taxcalc.RecalculateReceiptTotals(input.Items)
	if err != nil {
		return err
	}
	input.TotalAmount = totals.TotalAmount
	input.EligibleAmount = totals.EligibleAmount
	return nil
}

// CreateReceipt validates, derives totals, and saves a receipt with items
func (s *receiptService) CreateReceipt(ctx context.Context, userID string, input ReceiptInput) (*domain.Receipt, error) {
	if err := prepareReceipt(&input); err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{
		UserID:         userID,
		StoreName:      strings.TrimSpace(input.StoreName),
		ReceiptDate:    input.ReceiptDate,
		TotalAmount:    input.TotalAmount,
		EligibleAmount: input.EligibleAmount,
		Items:          input.Items,
	}

	return s.repo.CreateReceipt(ctx, receipt)
}

// GetReceipt retrieves a receipt with its items
func (s *receiptService) GetReceipt(ctx context.Context, receiptID, userID string) (*domain.Receipt, error) {
	return s.repo.GetReceiptByID(ctx, receiptID, userID)
}

// UpdateReceipt applies a full replace: the stored item set becomes the
// supplied one (empty included) and the totals are persisted in the same
// write, so the denormalized fields cannot drift from the items. With items
// the totals are recomputed server-side; without items the receipt becomes
// item-less and the validated caller totals stand.
func (s *receiptService) UpdateReceipt(ctx context.Context, receiptID, userID string, input ReceiptInput) (*domain.Receipt, error) {
	existing, err := s.repo.GetReceiptByID(ctx, receiptID, userID)
	if err != nil {
		return nil, err
	}

	if err := prepareReceipt(&input); err != nil {
		return nil, err
	}

	existing.StoreName = strings.TrimSpace(input.StoreName)
	existing.ReceiptDate = input.ReceiptDate
	existing.TotalAmount = input.TotalAmount
	existing.EligibleAmount = input.EligibleAmount
	existing.Items = input.Items

	if _, err := s.repo.UpdateReceipt(ctx, existing); err != nil {
		return nil, err
	}

	return s.repo.GetReceiptByID(ctx, receiptID, userID)
}

// DeleteReceipt removes a receipt and, via cascade, its items
func (s *receiptService) DeleteReceipt(ctx context.Context, receiptID, userID string) error {
	return s.repo.DeleteReceipt(ctx, receiptID, userID)
}

// ListReceipts retrieves a paginated receipt list
func (s *receiptService) ListReceipts(ctx context.Context, filter domain.ReceiptFilter) (*domain.PaginatedReceipts, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListReceipts(ctx, filter)
}

// RecalculateTotals derives receipt totals from an item list
func (s *receiptService) RecalculateTotals(items []domain.ReceiptItem) (taxcalc.ReceiptTotals, error) {
	return taxcalc.RecalculateReceiptTotals(items)
}

// UploadImage stores the receipt photo and records its reference
func (s *receiptService) UploadImage(ctx context.Context, receiptID, userID string, data []byte, fileName, mimeType string) (*domain.Receipt, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("image", "is required")
	}

	// Ownership check before touching storage
	if _, err := s.repo.GetReceiptByID(ctx, receiptID, userID); err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadImage(data, fileName, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt image: %w", err)
	}

	image := domain.ReceiptImage{
		URL:      url,
		FileName: fileName,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}
	if err := s.repo.UpdateImage(ctx, receiptID, userID, image); err != nil {
		return nil, err
	}

	return s.repo.GetReceiptByID(ctx, receiptID, userID)
}

// GetMonthlyStats returns per-month receipt totals for a year
func (s *receiptService) GetMonthlyStats(ctx context.Context, userID string, year int) ([]repository.MonthlyReceiptStat, error) {
	return s.repo.GetMonthlyStats(ctx, userID, year)
}
