package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

const catalogUserID = "catalog-user"

// fakeProductRepo is an in-memory ProductRepository. Products owned by
// catalogUserID play the role of the public catalog.
type fakeProductRepo struct {
	products map[string]*domain.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*domain.Product{}}
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.nextID++
	product.ID = fmt.Sprintf("p%d", f.nextID)
	c := *product
	f.products[product.ID] = &c
	return product, nil
}

func (f *fakeProductRepo) GetVisibleProduct(_ context.Context, productID, userID string) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok || (p.UserID != userID && p.UserID != catalogUserID) {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) GetOwnedProduct(_ context.Context, productID, userID string) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) GetCatalogProduct(_ context.Context, productID string) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok || p.UserID != catalogUserID {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range f.products {
		if p.UserID == filter.UserID || p.UserID == catalogUserID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	p, ok := f.products[product.ID]
	if !ok || p.UserID != product.UserID {
		return nil, domain.ErrNotFound
	}
	c := *product
	f.products[product.ID] = &c
	return product, nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, productID, userID string) error {
	p, ok := f.products[productID]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeProductRepo) ListCategories(_ context.Context, userID string) ([]string, error) {
	return nil, nil
}

func TestUpdateOwnProductInPlace(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo)

	created, err := svc.CreateProduct(context.Background(), "u1", &domain.Product{
		Name: "GF Oats", Category: "grains", IsGlutenFree: true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), created.ID, "u1", domain.ProductPatch{
		Name:  ptr("GF Rolled Oats"),
		Price: ptr(7.99),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID, "own product must be updated in place")
	assert.Equal(t, "GF Rolled Oats", updated.Name)
	require.NotNil(t, updated.Price)
	assert.InDelta(t, 7.99, *updated.Price, 0.001)
	assert.Equal(t, "grains", updated.Category, "unpatched fields stay")
}

func TestUpdateCatalogProductCreatesPrivateCopy(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo)

	catalog, err := svc.CreateProduct(context.Background(), catalogUserID, &domain.Product{
		Name: "Brand X Bread", Category: "bread", IsGlutenFree: true, Price: ptr(6.49),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), catalog.ID, "u1", domain.ProductPatch{
		Notes: ptr("my local store stocks this"),
	})
	require.NoError(t, err)

	// the edit lands on a new private product
	assert.NotEqual(t, catalog.ID, updated.ID)
	assert.Equal(t, "u1", updated.UserID)
	assert.Equal(t, "Brand X Bread", updated.Name)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "my local store stocks this", *updated.Notes)

	// the catalog original is untouched
	original, err := svc.GetProduct(context.Background(), catalog.ID, "u1")
	require.NoError(t, err)
	assert.Nil(t, original.Notes)
	assert.Equal(t, catalogUserID, original.UserID)
}

func TestUpdateUnknownProductIsNotFound(t *testing.T) {
	svc := NewProductService(newFakeProductRepo())

	_, err := svc.UpdateProduct(context.Background(), "missing", "u1", domain.ProductPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateForeignPrivateProductIsNotFound(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo)

	created, err := svc.CreateProduct(context.Background(), "owner", &domain.Product{
		Name: "Private", Category: "misc",
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), created.ID, "intruder", domain.ProductPatch{Name: ptr("stolen")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(newFakeProductRepo())

	_, err := svc.CreateProduct(context.Background(), "u1", &domain.Product{Category: "bread"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.CreateProduct(context.Background(), "u1", &domain.Product{Name: "Bread"})
	require.Error(t, err)

	_, err = svc.CreateProduct(context.Background(), "u1", &domain.Product{
		Name: "Bread", Category: "bread", Price: ptr(-1.0),
	})
	require.Error(t, err)
}

func TestDeleteCatalogProductIsNotFound(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo)

	catalog, err := svc.CreateProduct(context.Background(), catalogUserID, &domain.Product{
		Name: "Shared", Category: "misc",
	})
	require.NoError(t, err)

	err = svc.DeleteProduct(context.Background(), catalog.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
