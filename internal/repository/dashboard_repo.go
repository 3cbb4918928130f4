package repository

import (
	"context"
	"time"

	"go-backoffice-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesSummary aggregates non-cancelled orders in a time window.
type SalesSummary struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Orders    int64           `json:"orders"`
	Customers int64           `json:"customers"`
}

// DailySales is one day's bucket in a sales chart.
type DailySales struct {
	Date    string          `json:"date"` // YYYY-MM-DD, UTC
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// InventorySummary describes the catalogue as a whole.
type InventorySummary struct {
	Products   int64           `json:"total_products"`
	LowStock   int64           `json:"low_stock_products"`
	StockValue decimal.Decimal `json:"stock_value"`
}

type DashboardRepository interface {
	SalesWindow(ctx context.Context, start, end time.Time) (*SalesSummary, error)
	DailySales(ctx context.Context, start, end time.Time) ([]DailySales, error)
	Inventory(ctx context.Context, lowStockThreshold int) (*InventorySummary, error)
	CountOpenPurchaseOrders(ctx context.Context) (int64, error)
	CountOpenTickets(ctx context.Context) (int64, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

// SalesWindow sums orders created in [start, end).
func (r *dashboardRepo) SalesWindow(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	var revenue decimal.NullDecimal
	summary := &SalesSummary{Revenue: decimal.Zero}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0), COUNT(*), COUNT(DISTINCT customer_email)").
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("status <> ?", model.OrderCancelled).
		Row().
		Scan(&revenue, &summary.Orders, &summary.Customers)
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		summary.Revenue = revenue.Decimal.Round(2)
	}
	return summary, nil
}

// DailySales buckets orders per UTC calendar day in Go so the query stays
// portable across drivers. Days without orders are included with zeros.
func (r *dashboardRepo) DailySales(ctx context.Context, start, end time.Time) ([]DailySales, error) {
	var rows []struct {
		CreatedAt time.Time
		Total     decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("created_at, total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("status <> ?", model.OrderCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var out []DailySales
	for d := start.UTC().Truncate(24 * time.Hour); d.Before(end); d = d.Add(24 * time.Hour) {
		key := d.Format("2006-01-02")
		index[key] = len(out)
		out = append(out, DailySales{Date: key, Revenue: decimal.Zero})
	}
	for _, row := range rows {
		i, ok := index[row.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		out[i].Revenue = out[i].Revenue.Add(row.Total)
		out[i].Orders++
	}
	return out, nil
}

func (r *dashboardRepo) Inventory(ctx context.Context, lowStockThreshold int) (*InventorySummary, error) {
	db := r.db.WithContext(ctx)
	summary := &InventorySummary{StockValue: decimal.Zero}

	if err := db.Model(&model.Product{}).Count(&summary.Products).Error; err != nil {
		return nil, err
	}
	err := db.Model(&model.Product{}).
		Where("(reorder_level > 0 AND stock <= reorder_level) OR (reorder_level = 0 AND stock < ?)", lowStockThreshold).
		Count(&summary.LowStock).Error
	if err != nil {
		return nil, err
	}

	var value decimal.NullDecimal
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(cost * stock), 0)").Row().Scan(&value); err != nil {
		return nil, err
	}
	if value.Valid {
		summary.StockValue = value.Decimal.Round(2)
	}
	return summary, nil
}

func (r *dashboardRepo) CountOpenPurchaseOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("status IN ?", []model.PurchaseOrderStatus{model.PODraft, model.POOrdered, model.POPartiallyReceived}).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepo) CountOpenTickets(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("status IN ?", []model.TicketStatus{model.TicketOpen, model.TicketInProgress}).
		Count(&count).Error
	return count, err
}
