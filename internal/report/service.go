// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"

	DefaultTopProducts = 10
	MaxTopProducts     = 100
)

var (
	ErrInvalidDate  = errors.New("dates must use YYYY-MM-DD")
	ErrInvalidRange = errors.New("start must not be after end")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalSales(ctx)
}

func (s *Service) TotalUsers(ctx context.Context) (int64, error) {
	return s.repo.TotalUsers(ctx)
}

func (s *Service) OrdersSummary(ctx context.Context) ([]StatusCount, error) {
	return s.repo.OrdersByStatus(ctx)
}

// SalesPerDay reports completed sales for every day from start through end,
// both inclusive.
func (s *Service) SalesPerDay(ctx context.Context, start, end string) ([]DailySales, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("sales per day start: %w", ErrInvalidDate)
	}

	through, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("sales per day end: %w", ErrInvalidDate)
	}

	if from.After(through) {
		return nil, fmt.Errorf("sales per day: %w", ErrInvalidRange)
	}

	return s.repo.SalesPerDay(ctx, from, through.AddDate(0, 0, 1))
}

func (s *Service) MonthlySales(ctx context.Context) ([]MonthlySales, error) {
	return s.repo.MonthlySales(ctx)
}

// TopProducts returns the best sellers. Zero means the default; larger
// limits are capped.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	switch {
	case limit < 0:
		return nil, fmt.Errorf("top products: %w", ErrInvalidLimit)
	case limit == 0:
		limit = DefaultTopProducts
	case limit > MaxTopProducts:
		limit = MaxTopProducts
	}

	return s.repo.TopProducts(ctx, limit)
}
