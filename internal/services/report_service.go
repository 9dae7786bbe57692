package services

import (
	"fmt"
	"time"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
)

// --- Report DTOs ---

// RevenueReport aggregates settled orders per business day.
type RevenueReport struct {
	From   string                 `json:"from"`
	To     string                 `json:"to"`
	Days   []models.RevenueBucket `json:"days"`
	Total  int64                  `json:"total"`
	Orders int                    `json:"orders"`
}

// RaiseReport aggregates balance top-ups per business day, split by cash
// versus bank transfer.
type RaiseReport struct {
	From  string                 `json:"from"`
	To    string                 `json:"to"`
	Days  []models.RaiseDayTotal `json:"days"`
	Cash  int64                  `json:"cash_total"`
	Bank  int64                  `json:"bank_total"`
	Count int                    `json:"count"`
}

// DebtorEntry is one row of the negative-balance report.
type DebtorEntry struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// --- ReportService Interface ---
type ReportService interface {
	GetRevenueReport(from, to string) (*RevenueReport, error)
	GetRaiseReport(from, to string) (*RaiseReport, error)
	GetLowStockReport(threshold int) ([]models.Product, error)
	GetDebtors() ([]DebtorEntry, error)
}

// --- reportService Implementation ---
type reportService struct {
	orderRepo   repositories.OrderRepository
	raiseRepo   repositories.RaiseRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	timeZone    string
	cutoffHour  int
	now         func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	or repositories.OrderRepository,
	rr repositories.RaiseRepository,
	pr repositories.ProductRepository,
	ur repositories.UserRepository,
	timeZone string,
	cutoffHour int,
) ReportService {
	return &reportService{
		orderRepo:   or,
		raiseRepo:   rr,
		productRepo: pr,
		userRepo:    ur,
		timeZone:    timeZone,
		cutoffHour:  cutoffHour,
		now:         time.Now,
	}
}

// parseRange validates the report window. Empty bounds default to the last
// 30 days ending today.
func (s *reportService) parseRange(from, to string) (time.Time, time.Time, error) {
	end := s.now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -30)

	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid 'from' date %q, expected YYYY-MM-DD", ErrValidation, from)
		}
		start = parsed
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid 'to' date %q, expected YYYY-MM-DD", ErrValidation, to)
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: 'to' date precedes 'from' date", ErrValidation)
	}
	return start, end, nil
}

func (s *reportService) GetRevenueReport(from, to string) (*RevenueReport, error) {
	start, end, err := s.parseRange(from, to)
	if err != nil {
		return nil, err
	}

	buckets, err := s.orderRepo.RevenueByDay(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue report: %w", err)
	}

	report := &RevenueReport{
		From: start.Format("2006-01-02"),
		To:   end.Format("2006-01-02"),
		Days: buckets,
	}
	for _, b := range buckets {
		report.Total += b.Revenue
		report.Orders += b.OrderCount
	}
	return report, nil
}

func (s *reportService) GetRaiseReport(from, to string) (*RaiseReport, error) {
	start, end, err := s.parseRange(from, to)
	if err != nil {
		return nil, err
	}

	totals, err := s.raiseRepo.TotalsByDay(start, end, s.timeZone, s.cutoffHour)
	if err != nil {
		return nil, fmt.Errorf("failed to build raise report: %w", err)
	}

	report := &RaiseReport{
		From: start.Format("2006-01-02"),
		To:   end.Format("2006-01-02"),
		Days: totals,
	}
	for _, t := range totals {
		report.Cash += t.CashTotal
		report.Bank += t.BankTotal
		report.Count += t.Count
	}
	return report, nil
}

func (s *reportService) GetLowStockReport(threshold int) ([]models.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", ErrValidation)
	}
	if threshold == 0 {
		threshold = 5
	}
	products, err := s.productRepo.GetLowStockProducts(threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}
	return products, nil
}

// GetDebtors lists non-guest accounts with a negative balance, most indebted
// first.
func (s *reportService) GetDebtors() ([]DebtorEntry, error) {
	users, err := s.userRepo.GetDebtors()
	if err != nil {
		return nil, fmt.Errorf("failed to list debtors: %w", err)
	}

	debtors := make([]DebtorEntry, 0, len(users))
	for _, u := range users {
		debtors = append(debtors, DebtorEntry{UserID: u.ID, Name: u.Name, Balance: u.Balance})
	}
	return debtors, nil
}
