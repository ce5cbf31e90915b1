package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
)

type ReportRepository struct {
	DB *db.Postgres
}

// CollectionRow is one payment flattened for the xlsx export.
type CollectionRow struct {
	RecordedAt        time.Time
	ClientName        string
	CollectorName     string
	DebtID            string
	InstallmentNumber *int
	Status            string
	AmountPaid        *decimal.Decimal
	Notes             string
}

// Collections returns the payments of a date range joined with client,
// collector and installment data, oldest first.
func (r ReportRepository) Collections(ctx context.Context, from, to *time.Time) ([]CollectionRow, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT p.recorded_at, c.name, u.name, p.debt_id::text, s.installment_number,
		       p.status, p.amount_paid, p.notes
		FROM payments p
		JOIN route_assignments a ON a.id = p.assignment_id
		JOIN clients c ON c.id = a.client_id
		JOIN users u ON u.id = p.recorded_by
		LEFT JOIN payment_schedule s ON s.id = p.schedule_item_id
		WHERE ($1::date IS NULL OR p.recorded_at::date >= $1)
		  AND ($2::date IS NULL OR p.recorded_at::date <= $2)
		ORDER BY p.recorded_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollectionRow
	for rows.Next() {
		var row CollectionRow
		if err := rows.Scan(
			&row.RecordedAt, &row.ClientName, &row.CollectorName, &row.DebtID,
			&row.InstallmentNumber, &row.Status, &row.AmountPaid, &row.Notes,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
