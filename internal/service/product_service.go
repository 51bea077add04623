package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, userID string, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, productID, userID string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, productID, userID string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID, userID string) error
	ListCategories(ctx context.Context, userID string) ([]string, error)
}

// productService implements ProductService
type productService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if strings.TrimSpace(product.Category) == "" {
		return domain.NewValidationError("category", "is required")
	}
	if product.Price != nil && *product.Price < 0 {
		return domain.NewValidationError("price", "cannot be negative")
	}
	return nil
}

// CreateProduct validates and saves a new product owned by the user
func (s *productService) CreateProduct(ctx context.Context, userID string, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.UserID = userID
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	if product.Brand != nil {
		trimmed := strings.TrimSpace(*product.Brand)
		product.Brand = &trimmed
	}

	return s.repo.CreateProduct(ctx, product)
}

// GetProduct retrieves a product visible to the user (own or catalog)
func (s *productService) GetProduct(ctx context.Context, productID, userID string) (*domain.Product, error) {
	return s.repo.GetVisibleProduct(ctx, productID, userID)
}

// ListProducts retrieves products visible to the user
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.ListProducts(ctx, filter)
}

// UpdateProduct applies a partial update. Editing a public catalog product
// never touches the original: a private copy is created for the user and the
// patch is applied to the copy.
func (s *productService) UpdateProduct(ctx context.Context, productID, userID string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, domain.NewValidationError("price", "cannot be negative")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.NewValidationError("name", "cannot be empty")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, domain.NewValidationError("category", "cannot be empty")
	}

	product, err := s.repo.GetOwnedProduct(ctx, productID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		// Not the user's own product: copy-on-write if it is a catalog one
		catalog, catErr := s.repo.GetCatalogProduct(ctx, productID)
		if catErr != nil {
			if errors.Is(catErr, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, catErr
		}

		clone := &domain.Product{
			UserID:       userID,
			Name:         catalog.Name,
			Category:     catalog.Category,
			Brand:        catalog.Brand,
			IsGlutenFree: catalog.IsGlutenFree,
			Price:        catalog.Price,
			Notes:        catalog.Notes,
		}
		product, err = s.repo.CreateProduct(ctx, clone)
		if err != nil {
			return nil, fmt.Errorf("failed to copy catalog product: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	applyProductPatch(product, patch)

	return s.repo.UpdateProduct(ctx, product)
}

func applyProductPatch(product *domain.Product, patch domain.ProductPatch) {
	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		product.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Brand != nil {
		trimmed := strings.TrimSpace(*patch.Brand)
		product.Brand = &trimmed
	}
	if patch.IsGlutenFree != nil {
		product.IsGlutenFree = *patch.IsGlutenFree
	}
	if patch.Price != nil {
		product.Price = patch.Price
	}
	if patch.Notes != nil {
		trimmed := strings.TrimSpace(*patch.Notes)
		product.Notes = &trimmed
	}
}

// DeleteProduct removes a product the user owns. Catalog products cannot be
// deleted through this path and surface as NotFound.
func (s *productService) DeleteProduct(ctx context.Context, productID, userID string) error {
	return s.repo.DeleteProduct(ctx, productID, userID)
}

// ListCategories returns the user's distinct product categories
func (s *productService) ListCategories(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListCategories(ctx, userID)
}
