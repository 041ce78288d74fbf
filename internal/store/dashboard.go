package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/shopspring/decimal"
)

// recentSignupWindow is how far back recentSignups looks.
const recentSignupWindow = "30 days"

// GetDashboardStats computes the admin dashboard aggregates.
func (s *Store) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var row struct {
		TotalSales    decimal.Decimal `db:"total_sales"`
		ActiveVendors int64           `db:"active_vendors"`
		RecentSignups int64           `db:"recent_signups"`
		PendingOrders int64           `db:"pending_orders"`
	}

	query := `
		SELECT
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE order_status <> 'cancelled') AS total_sales,
			(SELECT COUNT(*) FROM vendors WHERE status = 'active') AS active_vendors,
			(SELECT COUNT(*) FROM users WHERE created_at >= NOW() - $1::interval) AS recent_signups,
			(SELECT COUNT(*) FROM orders WHERE order_status = 'pending') AS pending_orders`

	if err := s.db.GetContext(ctx, &row, query, recentSignupWindow); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	return &models.DashboardStats{
		TotalSales:    row.TotalSales,
		ActiveVendors: row.ActiveVendors,
		RecentSignups: row.RecentSignups,
		PendingOrders: row.PendingOrders,
	}, nil
}
