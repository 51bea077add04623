package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCreateReceiptRecomputesTotalsFromItems(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	input := ReceiptInput{
		StoreName:   "Natural Grocer",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		// Caller-declared totals are wrong on purpose; they must be ignored
		TotalAmount:    999,
		EligibleAmount: 999,
		Items: []domain.ReceiptItem{
			{Name: "GF bread", Price: 8.99, Quantity: 1, IsEligible: true, ComparisonPrice: ptr(3.49)},
			{Name: "bananas", Price: 2.50, Quantity: 1, IsEligible: false},
		},
	}

	receipt, err := svc.CreateReceipt(context.Background(), "u1", input)
	require.NoError(t, err)

	assert.InDelta(t, 11.49, receipt.TotalAmount, 0.001)
	assert.InDelta(t, 5.50, receipt.EligibleAmount, 0.001)

	// incremental cost is derived and persisted with the item
	require.NotNil(t, receipt.Items[0].IncrementalCost)
	assert.InDelta(t, 5.50, *receipt.Items[0].IncrementalCost, 0.001)
	assert.Nil(t, receipt.Items[1].IncrementalCost)
}

func TestCreateReceiptWithoutItemsKeepsDeclaredTotals(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	receipt, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:      "Pharmacy",
		ReceiptDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:    45.00,
		EligibleAmount: 20.00,
	})
	require.NoError(t, err)

	assert.InDelta(t, 45.00, receipt.TotalAmount, 0.001)
	assert.InDelta(t, 20.00, receipt.EligibleAmount, 0.001)
}

func TestCreateReceiptValidation(t *testing.T) {
	svc := NewReceiptService(newFakeReceiptRepo(), nil)
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input ReceiptInput
	}{
		{
			name:  "missing store name",
			input: ReceiptInput{ReceiptDate: date, TotalAmount: 1},
		},
		{
			name:  "missing date",
			input: ReceiptInput{StoreName: "Store", TotalAmount: 1},
		},
		{
			name:  "eligible exceeds total",
			input: ReceiptInput{StoreName: "Store", ReceiptDate: date, TotalAmount: 10, EligibleAmount: 11},
		},
		{
			name:  "negative total",
			input: ReceiptInput{StoreName: "Store", ReceiptDate: date, TotalAmount: -1},
		},
		{
			name: "item with zero quantity",
			input: ReceiptInput{StoreName: "Store", ReceiptDate: date, Items: []domain.ReceiptItem{
				{Name: "bad", Price: 5, Quantity: 0, IsEligible: true},
			}},
		},
		{
			name: "item with negative comparison price",
			input: ReceiptInput{StoreName: "Store", ReceiptDate: date, Items: []domain.ReceiptItem{
				{Name: "bad", Price: 5, Quantity: 1, IsEligible: true, ComparisonPrice: ptr(-2.0)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReceipt(context.Background(), "u1", tt.input)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestUpdateReceiptReplacesItemsAtomically(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Old Store",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Items: []domain.ReceiptItem{
			{Name: "old item", Price: 10, Quantity: 1, IsEligible: true},
		},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateReceipt(context.Background(), created.ID, "u1", ReceiptInput{
		StoreName:   "New Store",
		ReceiptDate: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		Items: []domain.ReceiptItem{
			{Name: "GF flour", Price: 12.00, Quantity: 2, IsEligible: true, ComparisonPrice: ptr(4.00)},
			{Name: "soap", Price: 3.00, Quantity: 1, IsEligible: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "New Store", updated.StoreName)
	assert.InDelta(t, 15.00, updated.TotalAmount, 0.001)
	assert.InDelta(t, 8.00, updated.EligibleAmount, 0.001)

	// the item set went through the atomic replace path
	replaced, ok := repo.replaced[created.ID]
	require.True(t, ok)
	assert.Len(t, replaced, 2)
}

func TestUpdateReceiptWithEmptyItemsClearsStoredItems(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Grocer",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Items: []domain.ReceiptItem{
			{Name: "GF pasta", Price: 10, Quantity: 1, IsEligible: true},
		},
	})
	require.NoError(t, err)

	// replacing the item set with nothing must not leave the old items
	// behind contradicting the new totals
	updated, err := svc.UpdateReceipt(context.Background(), created.ID, "u1", ReceiptInput{
		StoreName:      "Grocer",
		ReceiptDate:    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount:    3,
		EligibleAmount: 1,
	})
	require.NoError(t, err)

	assert.Empty(t, updated.Items)
	assert.InDelta(t, 3, updated.TotalAmount, 0.001)
	assert.InDelta(t, 1, updated.EligibleAmount, 0.001)
}

func TestUpdateReceiptFailureLeavesReceiptUntouched(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Grocer",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Items: []domain.ReceiptItem{
			{Name: "GF pasta", Price: 10, Quantity: 1, IsEligible: true},
		},
	})
	require.NoError(t, err)

	repo.updateErr = errors.New("connection reset")
	_, err = svc.UpdateReceipt(context.Background(), created.ID, "u1", ReceiptInput{
		StoreName:   "Grocer",
		ReceiptDate: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		Items: []domain.ReceiptItem{
			{Name: "GF bread", Price: 8, Quantity: 1, IsEligible: true},
		},
	})
	require.Error(t, err)

	// items and totals come from the same write, so a failed update changes
	// neither
	stored, getErr := svc.GetReceipt(context.Background(), created.ID, "u1")
	require.NoError(t, getErr)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "GF pasta", stored.Items[0].Name)
	assert.InDelta(t, 10, stored.TotalAmount, 0.001)
	assert.InDelta(t, 10, stored.EligibleAmount, 0.001)
}

func TestUpdateReceiptNotFound(t *testing.T) {
	svc := NewReceiptService(newFakeReceiptRepo(), nil)

	_, err := svc.UpdateReceipt(context.Background(), "missing", "u1", ReceiptInput{
		StoreName:   "Store",
		ReceiptDate: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateReceiptOwnershipEnforced(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, nil)

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Store",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount: 10,
	})
	require.NoError(t, err)

	_, err = svc.UpdateReceipt(context.Background(), created.ID, "intruder", ReceiptInput{
		StoreName:   "Hijack",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeUploader struct {
	lastFileName string
}

func (f *fakeUploader) UploadImage(data []byte, fileName, contentType string) (string, error) {
	f.lastFileName = fileName
	return "https://storage.example.com/" + fileName, nil
}

func TestUploadImageStoresReference(t *testing.T) {
	repo := newFakeReceiptRepo()
	uploader := &fakeUploader{}
	svc := NewReceiptService(repo, uploader)

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Store",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount: 10,
	})
	require.NoError(t, err)

	receipt, err := svc.UploadImage(context.Background(), created.ID, "u1", []byte{0xFF, 0xD8}, "receipt.jpg", "image/jpeg")
	require.NoError(t, err)

	require.NotNil(t, receipt.ImageURL)
	assert.Equal(t, "https://storage.example.com/receipt.jpg", *receipt.ImageURL)
	require.NotNil(t, receipt.ImageSize)
	assert.Equal(t, int64(2), *receipt.ImageSize)
}

func TestUploadImageRejectsForeignReceipt(t *testing.T) {
	repo := newFakeReceiptRepo()
	svc := NewReceiptService(repo, &fakeUploader{})

	created, err := svc.CreateReceipt(context.Background(), "u1", ReceiptInput{
		StoreName:   "Store",
		ReceiptDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount: 10,
	})
	require.NoError(t, err)

	_, err = svc.UploadImage(context.Background(), created.ID, "intruder", []byte{1}, "x.png", "image/png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
