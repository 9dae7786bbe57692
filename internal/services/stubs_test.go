package services

import (
	"database/sql"
	"time"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
)

// In-memory fakes for the repository layer. They apply mutations
// immediately, so rollback tests order their failing line first and assert
// on the recorded transaction state instead.

type stubTx struct {
	committed  bool
	rolledBack bool
}

func (t *stubTx) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (t *stubTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *stubTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }

func (t *stubTx) Commit() error { t.committed = true; return nil }
func (t *stubTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type stubDB struct {
	txs []*stubTx
}

func (d *stubDB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (d *stubDB) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (d *stubDB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (d *stubDB) Begin() (repositories.Tx, error) {
	tx := &stubTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *stubDB) lastTx() *stubTx {
	if len(d.txs) == 0 {
		return nil
	}
	return d.txs[len(d.txs)-1]
}

// --- users ---

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	stored := u
	r.users[stored.ID] = &stored
	return &stored
}

func (r *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetUserForUpdate(_ repositories.SQLExecutor, id int64) (*models.User, error) {
	return r.GetUserByID(id)
}

func (r *fakeUserRepo) GetUsers(models.UserFilters) ([]models.User, int, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) GetGuestsByHost(hostID int64) ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		if u.IsGuest && u.HostID != nil && *u.HostID == hostID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateUser(_ repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *user
	r.users[stored.ID] = &stored
	return nil
}

func (r *fakeUserRepo) AdjustBalance(_ repositories.SQLExecutor, userID int64, delta int64) (int64, error) {
	u, ok := r.users[userID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	u.Balance += delta
	return u.Balance, nil
}

func (r *fakeUserRepo) AdjustOrderStats(_ repositories.SQLExecutor, userID int64, orderDelta int, spentDelta int64) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.OrderCount += orderDelta
	u.TotalSpent += spentDelta
	return nil
}

func (r *fakeUserRepo) AnonymizeUser(_ repositories.SQLExecutor, id int64, placeholderName string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Name = placeholderName
	u.Username = nil
	u.Active = false
	return nil
}

func (r *fakeUserRepo) GetDebtors() ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		if u.Balance < 0 && !u.IsGuest && u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

// --- products ---

type fakeProductRepo struct {
	products    map[int64]*models.Product
	categories  map[int64]*models.Category
	events      map[int64]*models.SaleEvent
	nextID      int64
	nextEventID int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:    map[int64]*models.Product{},
		categories:  map[int64]*models.Category{},
		events:      map[int64]*models.SaleEvent{},
		nextID:      1,
		nextEventID: 1,
	}
}

func (r *fakeProductRepo) add(p models.Product) *models.Product {
	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	stored := p
	r.products[stored.ID] = &stored
	return &stored
}

func (r *fakeProductRepo) CreateCategory(_ repositories.SQLExecutor, category *models.Category) (int64, error) {
	category.ID = r.nextID
	r.nextID++
	stored := *category
	r.categories[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeProductRepo) GetCategoryByID(id int64) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeProductRepo) GetCategories() ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateCategory(_ repositories.SQLExecutor, category *models.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *category
	r.categories[stored.ID] = &stored
	return nil
}

func (r *fakeProductRepo) DeleteCategory(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (int64, error) {
	product.ID = r.nextID
	r.nextID++
	stored := *product
	r.products[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetProducts(models.ProductFilters) ([]models.Product, int, error) {
	out := []models.Product{}
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) GetProductIDs() ([]int64, error) {
	ids := []int64{}
	for id := range r.products {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeProductRepo) GetPopularProducts(limit int) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].PopularityScore > out[i].PopularityScore {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProductRepo) GetLowStockProducts(threshold int) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range r.products {
		if p.Active && p.Stock <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *product
	r.products[stored.ID] = &stored
	return nil
}

func (r *fakeProductRepo) DeactivateProduct(_ repositories.SQLExecutor, id int64) error {
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Active = false
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ repositories.SQLExecutor, productID int64, quantity int) (int, error) {
	p, ok := r.products[productID]
	if !ok || p.Stock < quantity {
		// Mirrors the conditional UPDATE: zero rows when the floor would be
		// crossed.
		return 0, repositories.ErrNotFound
	}
	p.Stock -= quantity
	return p.Stock, nil
}

func (r *fakeProductRepo) IncrementStock(_ repositories.SQLExecutor, productID int64, quantity int) (int, error) {
	p, ok := r.products[productID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	p.Stock += quantity
	return p.Stock, nil
}

func (r *fakeProductRepo) AdjustSaleStats(_ repositories.SQLExecutor, productID int64, orderDelta, quantityDelta int) error {
	p, ok := r.products[productID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.TotalOrders += orderDelta
	p.TotalQuantitySold += quantityDelta
	return nil
}

func (r *fakeProductRepo) SetPopularityScore(_ repositories.SQLExecutor, productID int64, score float64) error {
	p, ok := r.products[productID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.PopularityScore = score
	return nil
}

func (r *fakeProductRepo) InsertSaleEvent(_ repositories.SQLExecutor, event *models.SaleEvent) (int64, error) {
	event.ID = r.nextEventID
	r.nextEventID++
	stored := *event
	r.events[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeProductRepo) DeleteSaleEvent(_ repositories.SQLExecutor, eventID int64) error {
	if _, ok := r.events[eventID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.events, eventID)
	return nil
}

func (r *fakeProductRepo) PruneSaleEvents(_ repositories.SQLExecutor, productID int64, cutoff time.Time) (int64, error) {
	var pruned int64
	for id, e := range r.events {
		if e.ProductID == productID && e.SaleDate.Before(cutoff) {
			delete(r.events, id)
			pruned++
		}
	}
	return pruned, nil
}

func (r *fakeProductRepo) RecentQuantity(_ repositories.SQLExecutor, productID int64, since time.Time) (int, error) {
	total := 0
	for _, e := range r.events {
		if e.ProductID == productID && !e.SaleDate.Before(since) {
			total += e.Quantity
		}
	}
	return total, nil
}

func (r *fakeProductRepo) TotalQuantitySold(_ repositories.SQLExecutor, productID int64) (int, error) {
	p, ok := r.products[productID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return p.TotalQuantitySold, nil
}

func (r *fakeProductRepo) eventsFor(productID int64) []models.SaleEvent {
	out := []models.SaleEvent{}
	for _, e := range r.events {
		if e.ProductID == productID {
			out = append(out, *e)
		}
	}
	return out
}

// --- orders ---

type fakeOrderRepo struct {
	orders     map[int64]*models.Order
	items      map[int64][]models.OrderItem
	nextID     int64
	nextItemID int64
	revenue    []models.RevenueBucket
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:     map[int64]*models.Order{},
		items:      map[int64][]models.OrderItem{},
		nextID:     1,
		nextItemID: 1,
	}
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	order.ID = r.nextID
	r.nextID++
	stored := *order
	r.orders[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrders(models.OrderFilters) ([]models.Order, int, error) {
	out := []models.Order{}
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) DeleteOrder(_ repositories.SQLExecutor, orderID int64) (int64, error) {
	if _, ok := r.orders[orderID]; !ok {
		return 0, repositories.ErrNotFound
	}
	delete(r.orders, orderID)
	return 1, nil
}

func (r *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	item.ID = r.nextItemID
	r.nextItemID++
	r.items[item.OrderID] = append(r.items[item.OrderID], *item)
	return item.ID, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	return append([]models.OrderItem{}, r.items[orderID]...), nil
}

func (r *fakeOrderRepo) DeleteOrderItemsByOrderID(_ repositories.SQLExecutor, orderID int64) (int64, error) {
	n := int64(len(r.items[orderID]))
	delete(r.items, orderID)
	return n, nil
}

func (r *fakeOrderRepo) RevenueByDay(time.Time, time.Time) ([]models.RevenueBucket, error) {
	return r.revenue, nil
}

// --- raises, purchases, audit ---

type fakeRaiseRepo struct {
	raises []models.Raise
	totals []models.RaiseDayTotal
}

func (r *fakeRaiseRepo) CreateRaise(_ repositories.SQLExecutor, raise *models.Raise) (int64, error) {
	raise.ID = int64(len(r.raises) + 1)
	if raise.CreatedAt.IsZero() {
		raise.CreatedAt = time.Now()
	}
	r.raises = append(r.raises, *raise)
	return raise.ID, nil
}

func (r *fakeRaiseRepo) GetRaiseByID(id int64) (*models.Raise, error) {
	for _, ra := range r.raises {
		if ra.ID == id {
			cp := ra
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeRaiseRepo) GetRaises(models.RaiseFilters) ([]models.Raise, int, error) {
	return append([]models.Raise{}, r.raises...), len(r.raises), nil
}

func (r *fakeRaiseRepo) TotalsByDay(time.Time, time.Time, string, int) ([]models.RaiseDayTotal, error) {
	return r.totals, nil
}

type fakePurchaseRepo struct {
	purchases []models.Purchase
}

func (r *fakePurchaseRepo) CreatePurchase(_ repositories.SQLExecutor, purchase *models.Purchase) (int64, error) {
	purchase.ID = int64(len(r.purchases) + 1)
	r.purchases = append(r.purchases, *purchase)
	return purchase.ID, nil
}

func (r *fakePurchaseRepo) GetPurchaseByID(id int64) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakePurchaseRepo) GetPurchases(models.PurchaseFilters) ([]models.Purchase, int, error) {
	return append([]models.Purchase{}, r.purchases...), len(r.purchases), nil
}

type fakeAuditRepo struct {
	entries []models.AuditEntry
}

func (r *fakeAuditRepo) CreateEntry(_ repositories.SQLExecutor, entry *models.AuditEntry) (int64, error) {
	entry.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return entry.ID, nil
}

func (r *fakeAuditRepo) GetEntries(int, int) ([]models.AuditEntry, int, error) {
	return append([]models.AuditEntry{}, r.entries...), len(r.entries), nil
}
