package service

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"go-backoffice-api/internal/repository"
	"go-backoffice-api/pkg/money"
)

// DashboardMetrics compares the last Days days with the Days before them.
type DashboardMetrics struct {
	Days            int                     `json:"days"`
	Current         repository.SalesSummary `json:"current"`
	Previous        repository.SalesSummary `json:"previous"`
	RevenueChange   decimal.Decimal         `json:"revenue_change"`
	OrdersChange    decimal.Decimal         `json:"orders_change"`
	CustomersChange decimal.Decimal         `json:"customers_change"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

type DashboardStats struct {
	repository.InventorySummary
	OpenPurchaseOrders int64 `json:"open_purchase_orders"`
	OpenTickets        int64 `json:"open_tickets"`
}

type DashboardService interface {
	Metrics(ctx context.Context, now time.Time, days int) (*DashboardMetrics, error)
	Stats(ctx context.Context) (*DashboardStats, error)
	SalesChart(ctx context.Context, now time.Time, days int) ([]repository.DailySales, error)
}

type dashboardService struct {
	repo              repository.DashboardRepository
	lowStockThreshold int
}

func NewDashboardService(repo repository.DashboardRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{repo: repo, lowStockThreshold: lowStockThreshold}
}

func lookback(days int) (time.Duration, error) {
	if days <= 0 || days > 366 {
		return 0, errors.NotValidf("days %d", days)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// Metrics queries both windows concurrently: [now-days, now) as current and
// [now-2*days, now-days) as previous.
func (s *dashboardService) Metrics(ctx context.Context, now time.Time, days int) (*DashboardMetrics, error) {
	window, err := lookback(days)
	if err != nil {
		return nil, err
	}
	now = now.UTC()

	var current, previous *repository.SalesSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.SalesWindow(gctx, now.Add(-window), now)
		return errors.Annotate(err, "current window")
	})
	g.Go(func() error {
		var err error
		previous, err = s.repo.SalesWindow(gctx, now.Add(-2*window), now.Add(-window))
		return errors.Annotate(err, "previous window")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardMetrics{
		Days:            days,
		Current:         *current,
		Previous:        *previous,
		RevenueChange:   money.PercentChange(current.Revenue, previous.Revenue),
		OrdersChange:    money.PercentChange(decimal.NewFromInt(current.Orders), decimal.NewFromInt(previous.Orders)),
		CustomersChange: money.PercentChange(decimal.NewFromInt(current.Customers), decimal.NewFromInt(previous.Customers)),
		GeneratedAt:     now,
	}, nil
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var inventory *repository.InventorySummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = s.repo.Inventory(gctx, s.lowStockThreshold)
		return errors.Annotate(err, "inventory")
	})
	g.Go(func() error {
		var err error
		stats.OpenPurchaseOrders, err = s.repo.CountOpenPurchaseOrders(gctx)
		return errors.Annotate(err, "purchase orders")
	})
	g.Go(func() error {
		var err error
		stats.OpenTickets, err = s.repo.CountOpenTickets(gctx)
		return errors.Annotate(err, "tickets")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.InventorySummary = *inventory
	return stats, nil
}

func (s *dashboardService) SalesChart(ctx context.Context, now time.Time, days int) ([]repository.DailySales, error) {
	window, err := lookback(days)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return s.repo.DailySales(ctx, now.Add(-window), now)
}
