package repository

import (
	"context"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// ProductRepository defines the interface for product data operations.
// Visibility rules: a user sees their own products plus the public catalog
// (products owned by the distinguished catalog user). The catalog is
// read-only for everyone else; copy-on-write happens in the service layer.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// GetVisibleProduct returns the product if it is owned by the user or by
	// the public catalog user.
	GetVisibleProduct(ctx context.Context, productID, userID string) (*domain.Product, error)

	// GetOwnedProduct returns the product only if the user owns it.
	GetOwnedProduct(ctx context.Context, productID, userID string) (*domain.Product, error)

	// GetCatalogProduct returns the product only if the catalog user owns it.
	GetCatalogProduct(ctx context.Context, productID string) (*domain.Product, error)

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID, userID string) error
	ListCategories(ctx context.Context, userID string) ([]string, error)
}
