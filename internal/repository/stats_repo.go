package repository

import (
	"context"
	"fmt"

	"bhms-backend/internal/model"

	"gorm.io/gorm"
)

// RevenueDataRow is one billing-period bucket of the owner dashboard numbers.
type RevenueDataRow struct {
	Year        int     `gorm:"column:year"`
	Month       int     `gorm:"column:month"`
	Collected   float64 `gorm:"column:collected"`
	Outstanding float64 `gorm:"column:outstanding"`
	Overdue     float64 `gorm:"column:overdue"`
	Invoices    int64   `gorm:"column:invoices"`
}

// OccupancyRow summarizes room occupancy for the dashboard.
type OccupancyRow struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

type StatsRepository interface {
	RevenueByPeriod(ctx context.Context, fromYear, fromMonth, toYear, toMonth int) ([]RevenueDataRow, error)
	Occupancy(ctx context.Context) ([]OccupancyRow, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// RevenueByPeriod buckets invoices by their billing month/year columns, so the
// query stays portable and unaffected by when an invoice row was actually created.
func (r *statsRepository) RevenueByPeriod(ctx context.Context, fromYear, fromMonth, toYear, toMonth int) ([]RevenueDataRow, error) {
	query := `
		SELECT
			year,
			month,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS collected,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS outstanding,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS overdue,
			COUNT(*) AS invoices
		FROM invoices
		WHERE (year * 100 + month) >= ? AND (year * 100 + month) <= ?
		GROUP BY year, month
		ORDER BY year, month
	`

	var rows []RevenueDataRow
	err := GetDB(ctx, r.db).Raw(query,
		model.InvoicePaid, model.InvoicePending, model.InvoiceOverdue,
		fromYear*100+fromMonth, toYear*100+toMonth,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue statistics: %w", err)
	}

	return rows, nil
}

func (r *statsRepository) Occupancy(ctx context.Context) ([]OccupancyRow, error) {
	var rows []OccupancyRow
	err := GetDB(ctx, r.db).Model(&model.Room{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query occupancy: %w", err)
	}
	return rows, nil
}
