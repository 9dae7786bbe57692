package services

import (
	"testing"
	"time"

	"bartab_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRevenueReportSumsBuckets(t *testing.T) {
	orders := newFakeOrderRepo()
	orders.revenue = []models.RevenueBucket{
		{Day: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), OrderCount: 4, Revenue: 1200},
		{Day: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), OrderCount: 2, Revenue: 800},
	}
	svc := NewReportService(orders, &fakeRaiseRepo{}, newFakeProductRepo(), newFakeUserRepo(), "UTC", 8)

	report, err := svc.GetRevenueReport("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), report.Total)
	assert.Equal(t, 6, report.Orders)
	assert.Len(t, report.Days, 2)
}

func TestGetRaiseReportSumsTotals(t *testing.T) {
	raises := &fakeRaiseRepo{totals: []models.RaiseDayTotal{
		{Day: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), CashTotal: 5000, BankTotal: 2000, Count: 3},
		{Day: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), CashTotal: 1000, BankTotal: 0, Count: 1},
	}}
	svc := NewReportService(newFakeOrderRepo(), raises, newFakeProductRepo(), newFakeUserRepo(), "UTC", 8)

	report, err := svc.GetRaiseReport("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), report.Cash)
	assert.Equal(t, int64(2000), report.Bank)
	assert.Equal(t, 4, report.Count)
}

func TestReportRangeValidation(t *testing.T) {
	svc := NewReportService(newFakeOrderRepo(), &fakeRaiseRepo{}, newFakeProductRepo(), newFakeUserRepo(), "UTC", 8)

	_, err := svc.GetRevenueReport("not-a-date", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetRevenueReport("2025-03-10", "2025-03-01")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetDebtors(t *testing.T) {
	users := newFakeUserRepo()
	users.add(models.User{Name: "InCredit", Active: true, Balance: 500})
	debtor := users.add(models.User{Name: "Debtor", Active: true, Balance: -1500})
	host := users.add(models.User{Name: "Host", Active: true})
	users.add(models.User{Name: "GuestDebt", Active: true, IsGuest: true, HostID: &host.ID, Balance: -900})
	svc := NewReportService(newFakeOrderRepo(), &fakeRaiseRepo{}, newFakeProductRepo(), users, "UTC", 8)

	debtors, err := svc.GetDebtors()
	require.NoError(t, err)
	require.Len(t, debtors, 1)
	assert.Equal(t, debtor.ID, debtors[0].UserID)
	assert.Equal(t, int64(-1500), debtors[0].Balance)
}

func TestGetLowStockReport(t *testing.T) {
	products := newFakeProductRepo()
	products.add(models.Product{Name: "Beer", Stock: 2, Active: true})
	products.add(models.Product{Name: "Wine", Stock: 40, Active: true})
	svc := NewReportService(newFakeOrderRepo(), &fakeRaiseRepo{}, products, newFakeUserRepo(), "UTC", 8)

	low, err := svc.GetLowStockReport(0) // defaults to threshold 5
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Beer", low[0].Name)

	_, err = svc.GetLowStockReport(-1)
	assert.ErrorIs(t, err, ErrValidation)
}
