// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count"  json:"count"`
}

type DailySales struct {
	Date       string          `db:"date"        json:"date"`
	DailySales decimal.Decimal `db:"daily_sales" json:"daily_sales"`
}

type MonthlySales struct {
	Month        string          `db:"month"         json:"month"`
	MonthlySales decimal.Decimal `db:"monthly_sales" json:"monthly_sales"`
}

type TopProduct struct {
	ProductID int64  `db:"product_id" json:"product_id"`
	Name      string `db:"name"       json:"name"`
	TotalSold int64  `db:"total_sold" json:"total_sold"`
}

// Repository runs read-only aggregations. Only completed orders count as
// sales.
type Repository interface {
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	TotalUsers(ctx context.Context) (int64, error)
	OrdersByStatus(ctx context.Context) ([]StatusCount, error)
	SalesPerDay(ctx context.Context, from, until time.Time) ([]DailySales, error)
	MonthlySales(ctx context.Context) ([]MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = 'completed'`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return decimal.Zero, fmt.Errorf("total sales: %w", err)
	}

	return total, nil
}

func (r *repository) TotalUsers(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("total users: %w", err)
	}

	return count, nil
}

func (r *repository) OrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM orders
		GROUP BY status
		ORDER BY status`

	rows := []StatusCount{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}

	return rows, nil
}

// SalesPerDay sums completed orders created in [from, until).
func (r *repository) SalesPerDay(
	ctx context.Context,
	from, until time.Time,
) ([]DailySales, error) {
	query := `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS date,
		       SUM(total) AS daily_sales
		FROM orders
		WHERE status = 'completed'
		  AND created_at >= $1
		  AND created_at < $2
		GROUP BY 1
		ORDER BY 1`

	rows := []DailySales{}
	if err := r.db.SelectContext(ctx, &rows, query, from, until); err != nil {
		return nil, fmt.Errorf("sales per day: %w", err)
	}

	return rows, nil
}

func (r *repository) MonthlySales(ctx context.Context) ([]MonthlySales, error) {
	query := `
		SELECT TO_CHAR(DATE_TRUNC('month', created_at), 'YYYY-MM') AS month,
		       SUM(total) AS monthly_sales
		FROM orders
		WHERE status = 'completed'
		GROUP BY 1
		ORDER BY 1`

	rows := []MonthlySales{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}

	return rows, nil
}

// TopProducts ranks products by units sold. Lines whose product was deleted
// are left out; the current name wins over the name captured at checkout.
func (r *repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	query := `
		SELECT oi.product_id,
		       COALESCE(p.name, MAX(oi.product_name)) AS name,
		       SUM(oi.quantity) AS total_sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'completed' AND oi.product_id IS NOT NULL
		GROUP BY oi.product_id, p.name
		ORDER BY total_sold DESC, oi.product_id
		LIMIT $1`

	rows := []TopProduct{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return rows, nil
}
