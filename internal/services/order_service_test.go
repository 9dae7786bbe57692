package services

import (
	"testing"
	"time"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	db       *stubDB
	users    *fakeUserRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	audit    *fakeAuditRepo
	service  OrderService
	now      time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		db:       &stubDB{},
		users:    newFakeUserRepo(),
		products: newFakeProductRepo(),
		orders:   newFakeOrderRepo(),
		audit:    &fakeAuditRepo{},
		now:      time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC),
	}
	svc := NewOrderService(f.orders, f.products, f.users, f.audit, nil, f.db, time.UTC, 8)
	svc.(*orderService).now = func() time.Time { return f.now }
	f.service = svc
	return f
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateOrderSettlesAtomically(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true, Balance: 1000})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 10, Active: true})

	order, err := f.service.CreateOrder(CreateOrderRequest{
		UserID:  int64Ptr(user.ID),
		Items:   []OrderLineRequest{{ProductID: beer.ID, Count: 3}},
		StaffID: 7,
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, int64(450), order.Total)
	assert.Equal(t, user.ID, order.PayerID)
	assert.Nil(t, order.GuestID)
	assert.Equal(t, int64(7), order.StaffID)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), order.DayOfOrder)

	assert.Equal(t, int64(550), f.users.users[user.ID].Balance)
	assert.Equal(t, 1, f.users.users[user.ID].OrderCount)
	assert.Equal(t, int64(450), f.users.users[user.ID].TotalSpent)

	p := f.products.products[beer.ID]
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, 1, p.TotalOrders)
	assert.Equal(t, 3, p.TotalQuantitySold)
	assert.Greater(t, p.PopularityScore, 0.0)

	events := f.products.eventsFor(beer.ID)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Quantity)

	items, _ := f.orders.GetOrderItemsByOrderID(order.ID)
	require.Len(t, items, 1)
	assert.Equal(t, int64(150), items[0].UnitPrice)
	assert.Equal(t, int64(450), items[0].TotalPrice)
	require.NotNil(t, items[0].SaleEventID)
	assert.Equal(t, events[0].ID, *items[0].SaleEventID)

	require.NotNil(t, f.db.lastTx())
	assert.True(t, f.db.lastTx().committed)
}

func TestCreateOrderEarlyMorningBelongsToPreviousDay(t *testing.T) {
	f := newOrderFixture(t)
	f.now = time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC)
	user := f.users.add(models.User{Name: "Nils", Active: true})
	beer := f.products.add(models.Product{Name: "Beer", Price: 100, Stock: 5, Active: true})

	order, err := f.service.CreateOrder(CreateOrderRequest{
		UserID: int64Ptr(user.ID),
		Items:  []OrderLineRequest{{ProductID: beer.ID, Count: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), order.DayOfOrder)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true, Balance: 1000})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 2, Active: true})

	_, err := f.service.CreateOrder(CreateOrderRequest{
		UserID: int64Ptr(user.ID),
		Items:  []OrderLineRequest{{ProductID: beer.ID, Count: 3}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 2, f.products.products[beer.ID].Stock)
	assert.Equal(t, int64(1000), f.users.users[user.ID].Balance)
	assert.Empty(t, f.orders.orders)
	require.NotNil(t, f.db.lastTx())
	assert.True(t, f.db.lastTx().rolledBack)
	assert.False(t, f.db.lastTx().committed)
}

func TestCreateOrderGuestBillsHost(t *testing.T) {
	f := newOrderFixture(t)
	host := f.users.add(models.User{Name: "Host", Active: true, Balance: 2000})
	guest := f.users.add(models.User{Name: "Guest", Active: true, IsGuest: true, HostID: &host.ID})
	wine := f.products.add(models.Product{Name: "Wine", Price: 400, Stock: 6, Active: true})

	order, err := f.service.CreateOrder(CreateOrderRequest{
		GuestID: int64Ptr(guest.ID),
		Items:   []OrderLineRequest{{ProductID: wine.ID, Count: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, host.ID, order.PayerID)
	require.NotNil(t, order.GuestID)
	assert.Equal(t, guest.ID, *order.GuestID)

	// The host pays; the guest account mirrors the spend.
	assert.Equal(t, int64(1200), f.users.users[host.ID].Balance)
	assert.Equal(t, int64(-800), f.users.users[guest.ID].Balance)
	assert.Equal(t, 1, f.users.users[guest.ID].OrderCount)
	assert.Equal(t, int64(800), f.users.users[guest.ID].TotalSpent)
	assert.Equal(t, 0, f.users.users[host.ID].OrderCount)
}

func TestCreateOrderPayerValidation(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 5, Active: true})
	items := []OrderLineRequest{{ProductID: beer.ID, Count: 1}}

	_, err := f.service.CreateOrder(CreateOrderRequest{Items: items})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateOrder(CreateOrderRequest{
		UserID: int64Ptr(user.ID), GuestID: int64Ptr(user.ID), Items: items,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateOrder(CreateOrderRequest{UserID: int64Ptr(999), Items: items})
	assert.ErrorIs(t, err, ErrPayerNotFound)

	inactive := f.users.add(models.User{Name: "Gone", Active: false})
	_, err = f.service.CreateOrder(CreateOrderRequest{UserID: int64Ptr(inactive.ID), Items: items})
	assert.ErrorIs(t, err, ErrPayerInactive)
}

func TestCreateOrderGuestWithoutHost(t *testing.T) {
	f := newOrderFixture(t)
	orphan := f.users.add(models.User{Name: "Orphan", Active: true, IsGuest: true})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 5, Active: true})

	_, err := f.service.CreateOrder(CreateOrderRequest{
		GuestID: int64Ptr(orphan.ID),
		Items:   []OrderLineRequest{{ProductID: beer.ID, Count: 1}},
	})
	assert.ErrorIs(t, err, ErrGuestWithoutHost)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true})
	retired := f.products.add(models.Product{Name: "Old Brew", Price: 150, Stock: 5, Active: false})

	_, err := f.service.CreateOrder(CreateOrderRequest{
		UserID: int64Ptr(user.ID),
		Items:  []OrderLineRequest{{ProductID: retired.ID, Count: 1}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteOrderReversesEverything(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true, Balance: 1000})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 10, Active: true})

	order, err := f.service.CreateOrder(CreateOrderRequest{
		UserID:  int64Ptr(user.ID),
		Items:   []OrderLineRequest{{ProductID: beer.ID, Count: 3}},
		StaffID: 7,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteOrder(order.ID, 9))

	p := f.products.products[beer.ID]
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 0, p.TotalOrders)
	assert.Equal(t, 0, p.TotalQuantitySold)
	assert.Equal(t, 0.0, p.PopularityScore)
	assert.Empty(t, f.products.eventsFor(beer.ID))

	u := f.users.users[user.ID]
	assert.Equal(t, int64(1000), u.Balance)
	assert.Equal(t, 0, u.OrderCount)
	assert.Equal(t, int64(0), u.TotalSpent)

	assert.Empty(t, f.orders.orders)
	items, _ := f.orders.GetOrderItemsByOrderID(order.ID)
	assert.Empty(t, items)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditActionOrderDeleted, f.audit.entries[0].Action)
	require.NotNil(t, f.audit.entries[0].StaffID)
	assert.Equal(t, int64(9), *f.audit.entries[0].StaffID)
}

func TestDeleteGuestOrderRefundsHostAndGuest(t *testing.T) {
	f := newOrderFixture(t)
	host := f.users.add(models.User{Name: "Host", Active: true, Balance: 2000})
	guest := f.users.add(models.User{Name: "Guest", Active: true, IsGuest: true, HostID: &host.ID})
	wine := f.products.add(models.Product{Name: "Wine", Price: 400, Stock: 6, Active: true})

	order, err := f.service.CreateOrder(CreateOrderRequest{
		GuestID: int64Ptr(guest.ID),
		Items:   []OrderLineRequest{{ProductID: wine.ID, Count: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteOrder(order.ID, 1))

	assert.Equal(t, int64(2000), f.users.users[host.ID].Balance)
	assert.Equal(t, int64(0), f.users.users[guest.ID].Balance)
	assert.Equal(t, 0, f.users.users[guest.ID].OrderCount)
	assert.Equal(t, int64(0), f.users.users[guest.ID].TotalSpent)
}

func TestDeleteOrderNotFound(t *testing.T) {
	f := newOrderFixture(t)
	err := f.service.DeleteOrder(42, 1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// deactivateOnLockUserRepo simulates a concurrent deactivation landing
// between payer validation and the row lock inside the settlement
// transaction.
type deactivateOnLockUserRepo struct {
	*fakeUserRepo
	targetID int64
}

func (r *deactivateOnLockUserRepo) GetUserForUpdate(executor repositories.SQLExecutor, id int64) (*models.User, error) {
	if id == r.targetID {
		r.users[id].Active = false
	}
	return r.fakeUserRepo.GetUserForUpdate(executor, id)
}

func TestCreateOrderPayerDeactivatedBeforeLock(t *testing.T) {
	f := newOrderFixture(t)
	user := f.users.add(models.User{Name: "Mara", Active: true, Balance: 1000})
	beer := f.products.add(models.Product{Name: "Beer", Price: 150, Stock: 10, Active: true})

	racing := &deactivateOnLockUserRepo{fakeUserRepo: f.users, targetID: user.ID}
	svc := NewOrderService(f.orders, f.products, racing, f.audit, nil, f.db, time.UTC, 8)
	svc.(*orderService).now = func() time.Time { return f.now }

	_, err := svc.CreateOrder(CreateOrderRequest{
		UserID: int64Ptr(user.ID),
		Items:  []OrderLineRequest{{ProductID: beer.ID, Count: 3}},
	})
	require.ErrorIs(t, err, ErrPayerInactive)

	assert.Equal(t, 10, f.products.products[beer.ID].Stock)
	assert.Equal(t, int64(1000), f.users.users[user.ID].Balance)
	tx := f.db.lastTx()
	require.NotNil(t, tx)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}
