package domain

import (
	"time"
)

// Product represents a gluten-free (or comparison) product tracked by a user.
// Products owned by the public catalog user are visible to everyone but
// read-only: editing one creates a private copy for the editing user.
type Product struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Brand        *string   `json:"brand,omitempty"`
	IsGlutenFree bool      `json:"isGlutenFree"`
	Price        *float64  `json:"price,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductPatch carries a partial product update; nil fields are left unchanged
type ProductPatch struct {
	Name         *string
	Category     *string
	Brand        *string
	IsGlutenFree *bool
	Price        *float64
	Notes        *string
}

// Empty reports whether the patch changes nothing
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Brand == nil &&
		p.IsGlutenFree == nil && p.Price == nil && p.Notes == nil
}

// ProductFilter represents filters for querying products
type ProductFilter struct {
	UserID    string
	Category  string
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}
