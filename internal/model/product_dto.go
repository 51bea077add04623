package model

import (
	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Brand        *string  `json:"brand"`
	IsGlutenFree bool     `json:"isGlutenFree"`
	Price        *float64 `json:"price"`
	Notes        *string  `json:"notes"`
}

// ToDomain converts the request to a domain Product
func (r *CreateProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		Name:         r.Name,
		Category:     r.Category,
		Brand:        r.Brand,
		IsGlutenFree: r.IsGlutenFree,
		Price:        r.Price,
		Notes:        r.Notes,
	}
}

// UpdateProductRequest represents a partial product update. Absent fields
// are left unchanged.
type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Brand        *string  `json:"brand"`
	IsGlutenFree *bool    `json:"isGlutenFree"`
	Price        *float64 `json:"price"`
	Notes        *string  `json:"notes"`
}

// ToPatch converts the request to a domain ProductPatch
func (r *UpdateProductRequest) ToPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:         r.Name,
		Category:     r.Category,
		Brand:        r.Brand,
		IsGlutenFree: r.IsGlutenFree,
		Price:        r.Price,
		Notes:        r.Notes,
	}
}

// ProductListResponse represents a paginated list of products
type ProductListResponse struct {
	Data       []domain.Product  `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// NewProductListResponse builds the paginated product response
func NewProductListResponse(products []domain.Product, total, page, limit int) ProductListResponse {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	if products == nil {
		products = []domain.Product{}
	}
	return ProductListResponse{
		Data: products,
		Pagination: domain.Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: page,
			Limit:       limit,
		},
	}
}
