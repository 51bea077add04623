package domain

import (
	"time"
)

// ReceiptItem represents an item on a receipt. Price and ComparisonPrice are
// line totals (unit price x quantity), not unit prices. IncrementalCost is
// price minus comparison price and is only set when a comparison exists.
type ReceiptItem struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Price               float64  `json:"price"`
	Quantity            int      `json:"quantity"`
	IsEligible          bool     `json:"isEligible"`
	PurchasedProductID  *string  `json:"purchasedProductId,omitempty"`
	ComparisonProductID *string  `json:"comparisonProductId,omitempty"`
	ComparisonPrice     *float64 `json:"comparisonPrice,omitempty"`
	IncrementalCost     *float64 `json:"incrementalCost,omitempty"`
}

// Receipt represents a store receipt with its items. TotalAmount and
// EligibleAmount are recomputed from the item list whenever items are
// supplied; caller-declared values are only kept for item-less receipts.
type Receipt struct {
	ID             string        `json:"id"`
	UserID         string        `json:"-"`
	StoreName      string        `json:"storeName"`
	ReceiptDate    time.Time     `json:"receiptDate"`
	TotalAmount    float64       `json:"totalAmount"`
	EligibleAmount float64       `json:"eligibleAmount"`
	ImageURL       *string       `json:"imageUrl,omitempty"`
	ImageFileName  *string       `json:"imageFileName,omitempty"`
	ImageMimeType  *string       `json:"imageMimeType,omitempty"`
	ImageSize      *int64        `json:"imageSize,omitempty"`
	Items          []ReceiptItem `json:"items"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ReceiptImage holds the stored reference for an uploaded receipt photo
type ReceiptImage struct {
	URL      string
	FileName string
	MimeType string
	Size     int64
}

// ReceiptFilter represents filters for querying receipts
type ReceiptFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	StoreName string
	Page      int
	Limit     int
}

// Pagination represents pagination metadata
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PaginatedReceipts represents a paginated list of receipts
type PaginatedReceipts struct {
	Data       []Receipt  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
