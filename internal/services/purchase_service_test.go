package services

import (
	"testing"
	"time"

	"bartab_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePurchaseIncrementsStock(t *testing.T) {
	db := &stubDB{}
	products := newFakeProductRepo()
	purchases := &fakePurchaseRepo{}
	audit := &fakeAuditRepo{}
	beer := products.add(models.Product{Name: "Beer", Price: 150, Stock: 4, Active: true})

	svc := NewPurchaseService(purchases, products, audit, db, time.UTC, 8)
	svc.(*purchaseService).now = func() time.Time {
		return time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	}

	purchase, err := svc.CreatePurchase(CreatePurchaseRequest{
		ProductID: beer.ID, Quantity: 24, UnitPrice: 80, StaffID: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 28, products.products[beer.ID].Stock)
	// 6 AM is before the cutoff, so the delivery books to the previous day.
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), purchase.DayOfOrder)

	require.Len(t, purchases.purchases, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRestock, audit.entries[0].Action)
	assert.True(t, db.lastTx().committed)
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	svc := NewPurchaseService(&fakePurchaseRepo{}, newFakeProductRepo(), &fakeAuditRepo{}, &stubDB{}, time.UTC, 8)
	_, err := svc.CreatePurchase(CreatePurchaseRequest{ProductID: 99, Quantity: 10})
	assert.ErrorIs(t, err, ErrPurchaseProductNotFound)
}

func TestCreatePurchaseValidation(t *testing.T) {
	products := newFakeProductRepo()
	beer := products.add(models.Product{Name: "Beer", Stock: 4, Active: true})
	svc := NewPurchaseService(&fakePurchaseRepo{}, products, &fakeAuditRepo{}, &stubDB{}, time.UTC, 8)

	_, err := svc.CreatePurchase(CreatePurchaseRequest{ProductID: beer.ID, Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreatePurchase(CreatePurchaseRequest{ProductID: beer.ID, Quantity: 5, UnitPrice: -1})
	assert.ErrorIs(t, err, ErrValidation)
}
