package services

import (
	"testing"

	"bartab_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewProductService(products, nil, &stubDB{})

	product, err := svc.CreateProduct(CreateProductRequest{Name: "  Pale Ale ", Price: 250, Stock: 12})
	require.NoError(t, err)
	assert.Equal(t, "Pale Ale", product.Name)
	assert.True(t, product.Active)
	assert.Equal(t, 12, products.products[product.ID].Stock)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil, &stubDB{})

	_, err := svc.CreateProduct(CreateProductRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	unknown := int64(99)
	_, err = svc.CreateProduct(CreateProductRequest{Name: "Beer", CategoryID: &unknown})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGetPopularProductsFallsBackToSQL(t *testing.T) {
	products := newFakeProductRepo()
	products.add(models.Product{Name: "Beer", Active: true, PopularityScore: 37.0})
	products.add(models.Product{Name: "Wine", Active: true, PopularityScore: 12.5})
	products.add(models.Product{Name: "Retired", Active: false, PopularityScore: 99.0})

	// nil ranking cache: the service must serve the ranking from SQL.
	svc := NewProductService(products, nil, &stubDB{})
	popular, err := svc.GetPopularProducts(2)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Beer", popular[0].Name)
	assert.Equal(t, "Wine", popular[1].Name)
}

func TestDeactivateProduct(t *testing.T) {
	products := newFakeProductRepo()
	beer := products.add(models.Product{Name: "Beer", Active: true})
	svc := NewProductService(products, nil, &stubDB{})

	require.NoError(t, svc.DeactivateProduct(beer.ID))
	assert.False(t, products.products[beer.ID].Active)

	assert.ErrorIs(t, svc.DeactivateProduct(999), ErrCatalogProductNotFound)
}

func TestUpdateProductValidation(t *testing.T) {
	products := newFakeProductRepo()
	beer := products.add(models.Product{Name: "Beer", Price: 150, Active: true})
	svc := NewProductService(products, nil, &stubDB{})

	badPrice := int64(-1)
	_, err := svc.UpdateProduct(beer.ID, UpdateProductRequest{Price: &badPrice})
	assert.ErrorIs(t, err, ErrValidation)

	newPrice := int64(175)
	updated, err := svc.UpdateProduct(beer.ID, UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(175), updated.Price)
}

func TestCategoryLifecycle(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewProductService(products, nil, &stubDB{})

	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "Draft", SortOrder: 1})
	require.NoError(t, err)

	newName := "On Tap"
	updated, err := svc.UpdateCategory(category.ID, UpdateCategoryRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "On Tap", updated.Name)

	require.NoError(t, svc.DeleteCategory(category.ID))
	assert.ErrorIs(t, svc.DeleteCategory(category.ID), ErrCategoryNotFound)
}
