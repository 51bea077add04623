package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db           *pgxpool.Pool
	catalogEmail string
}

// NewPostgresProductRepository creates a new PostgreSQL product repository.
// catalogEmail identifies the user owning the public product catalog.
func NewPostgresProductRepository(db *pgxpool.Pool, catalogEmail string) ProductRepository {
	return &PostgresProductRepository{db: db, catalogEmail: catalogEmail}
}

const productColumns = `p.id, p.user_id, p.name, p.category, p.brand, p.is_gluten_free, p.price, p.notes, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Category,
		&p.Brand,
		&p.IsGlutenFree,
		&p.Price,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct saves a new product
func (r *PostgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (user_id, name, category, brand, is_gluten_free, price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		product.UserID,
		product.Name,
		product.Category,
		product.Brand,
		product.IsGlutenFree,
		product.Price,
		product.Notes,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetVisibleProduct retrieves a product owned by the user or the catalog
func (r *PostgresProductRepository) GetVisibleProduct(ctx context.Context, productID, userID string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1 AND (p.user_id = $2 OR u.email = $3)
	`, productColumns)

	product, err := scanProduct(r.db.QueryRow(ctx, query, productID, userID, r.catalogEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetOwnedProduct retrieves a product only if the user owns it
func (r *PostgresProductRepository) GetOwnedProduct(ctx context.Context, productID, userID string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE p.id = $1 AND p.user_id = $2
	`, productColumns)

	product, err := scanProduct(r.db.QueryRow(ctx, query, productID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetCatalogProduct retrieves a product only if the catalog user owns it
func (r *PostgresProductRepository) GetCatalogProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1 AND u.email = $2
	`, productColumns)

	product, err := scanProduct(r.db.QueryRow(ctx, query, productID, r.catalogEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get catalog product: %w", err)
	}

	return product, nil
}

// allowed sort columns for product listing
var productSortColumns = map[string]string{
	"createdAt": "p.created_at",
	"name":      "p.name",
	"category":  "p.category",
	"price":     "p.price",
}

// ListProducts retrieves products visible to the user, with optional
// category and search filters, pagination and sorting. Returns the page and
// the total count of matching rows.
func (r *PostgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	conditions := []string{"(p.user_id = $1 OR u.email = $2)"}
	args := []interface{}{filter.UserID, r.catalogEmail}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE %s
	`, where)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sortColumn, ok := productSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "p.created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, where, sortColumn, sortOrder, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct persists the product's mutable fields
func (r *PostgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $1, category = $2, brand = $3, is_gluten_free = $4, price = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		product.Name,
		product.Category,
		product.Brand,
		product.IsGlutenFree,
		product.Price,
		product.Notes,
		product.ID,
		product.UserID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product owned by the user
func (r *PostgresProductRepository) DeleteProduct(ctx context.Context, productID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCategories returns the distinct categories of the user's own products
func (r *PostgresProductRepository) ListCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT category
		FROM products
		WHERE user_id = $1
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}
