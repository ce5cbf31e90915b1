package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	ActiveDebts      int64
	TotalOutstanding decimal.Decimal
	CollectedToday   decimal.Decimal
	VisitsToday      int64
	PaidVisitsToday  int64
}

type CollectorItem struct {
	Name      string
	Collected decimal.Decimal
	Visits    int64
	PaidCount int64
}

type DailyPoint struct {
	Date      time.Time
	Collected decimal.Decimal
	Payments  int64
}

func (r DashboardRepository) Summary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM debts WHERE status='active'),
			COALESCE((SELECT SUM(amount) FROM payment_schedule WHERE status <> 'paid'
				AND debt_id IN (SELECT id FROM debts WHERE status='active')), 0),
			COALESCE((SELECT SUM(amount_paid) FROM payments
				WHERE status='paid' AND recorded_at::date = CURRENT_DATE), 0),
			(SELECT count(*) FROM payments WHERE recorded_at::date = CURRENT_DATE),
			(SELECT count(*) FROM payments WHERE status='paid' AND recorded_at::date = CURRENT_DATE)
	`).Scan(&s.ActiveDebts, &s.TotalOutstanding, &s.CollectedToday, &s.VisitsToday, &s.PaidVisitsToday)
	return s, err
}

// PerCollector aggregates outcomes by recording collector over a window.
func (r DashboardRepository) PerCollector(ctx context.Context, from, to time.Time) ([]CollectorItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT u.name,
		       COALESCE(SUM(p.amount_paid) FILTER (WHERE p.status='paid'), 0),
		       count(*),
		       count(*) FILTER (WHERE p.status='paid')
		FROM payments p
		JOIN users u ON u.id = p.recorded_by
		WHERE p.recorded_at::date BETWEEN $1 AND $2
		GROUP BY u.name
		ORDER BY 2 DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CollectorItem
	for rows.Next() {
		var it CollectorItem
		if err := rows.Scan(&it.Name, &it.Collected, &it.Visits, &it.PaidCount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Daily returns the collected-per-day series for the last n days,
// including days with no payments.
func (r DashboardRepository) Daily(ctx context.Context, days int) ([]DailyPoint, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT d::date,
		       COALESCE(SUM(p.amount_paid) FILTER (WHERE p.status='paid'), 0),
		       count(p.id)
		FROM generate_series(CURRENT_DATE - ($1::int - 1), CURRENT_DATE, interval '1 day') AS d
		LEFT JOIN payments p ON p.recorded_at::date = d::date
		GROUP BY d::date
		ORDER BY d::date ASC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []DailyPoint
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Date, &p.Collected, &p.Payments); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
