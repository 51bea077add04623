package model

import (
	"time"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// ReceiptItemRequest represents one item in a receipt request. Price and
// comparisonPrice are line totals.
type ReceiptItemRequest struct {
	Name                string   `json:"name" binding:"required"`
	Price               float64  `json:"price"`
	Quantity            int      `json:"quantity"`
	IsEligible          bool     `json:"isEligible"`
	PurchasedProductID  *string  `json:"purchasedProductId"`
	ComparisonProductID *string  `json:"comparisonProductId"`
	ComparisonPrice     *float64 `json:"comparisonPrice"`
}

// ReceiptRequest represents a receipt create or full-update request. Date is
// YYYY-MM-DD. With items present, totalAmount and eligibleAmount are
// recomputed server-side and any supplied values ignored.
type ReceiptRequest struct {
	StoreName      string               `json:"storeName" binding:"required"`
	ReceiptDate    string               `json:"receiptDate" binding:"required"`
	TotalAmount    float64              `json:"totalAmount"`
	EligibleAmount float64              `json:"eligibleAmount"`
	Items          []ReceiptItemRequest `json:"items"`
}

// ToInput converts the request to a service ReceiptInput
func (r *ReceiptRequest) ToInput() (service.ReceiptInput, error) {
	date, err := time.Parse("2006-01-02", r.ReceiptDate)
	if err != nil {
		return service.ReceiptInput{}, domain.NewValidationError("receiptDate", "must be in YYYY-MM-DD format")
	}

	items := make([]domain.ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.ReceiptItem{
			Name:                item.Name,
			Price:               item.Price,
			Quantity:            item.Quantity,
			IsEligible:          item.IsEligible,
			PurchasedProductID:  item.PurchasedProductID,
			ComparisonProductID: item.ComparisonProductID,
			ComparisonPrice:     item.ComparisonPrice,
		}
	}

	return service.ReceiptInput{
		StoreName:      r.StoreName,
		ReceiptDate:    date,
		TotalAmount:    r.TotalAmount,
		EligibleAmount: r.EligibleAmount,
		Items:          items,
	}, nil
}

// RecalculateRequest carries an item list to derive totals from without
// persisting anything
type RecalculateRequest struct {
	Items []ReceiptItemRequest `json:"items" binding:"required"`
}

// ToItems converts the request items to domain receipt items
func (r *RecalculateRequest) ToItems() []domain.ReceiptItem {
	items := make([]domain.ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.ReceiptItem{
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        item.Quantity,
			IsEligible:      item.IsEligible,
			ComparisonPrice: item.ComparisonPrice,
		}
	}
	return items
}

// RecalculateResponse is the derived totals for an item list
type RecalculateResponse struct {
	TotalAmount    float64 `json:"totalAmount"`
	EligibleAmount float64 `json:"eligibleAmount"`
}
