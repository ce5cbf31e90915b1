package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type RouteRepository struct {
	DB *db.Postgres
}

type CreateRouteParams struct {
	CollectorID uuid.UUID
	RouteDate   time.Time
	Notes       string
}

func (r RouteRepository) Create(ctx context.Context, p CreateRouteParams) (*domain.Route, error) {
	var route domain.Route
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO routes (collector_id, route_date, notes, created_at)
		VALUES ($1,$2,$3, now())
		RETURNING id, collector_id, route_date, notes, created_at
	`, p.CollectorID, p.RouteDate, p.Notes).Scan(
		&route.ID, &route.CollectorID, &route.RouteDate, &route.Notes, &route.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &route, nil
}

func (r RouteRepository) List(ctx context.Context, from, to *time.Time, limit int) ([]domain.Route, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT r.id, r.collector_id, u.name, r.route_date, r.notes, r.created_at
		FROM routes r
		JOIN users u ON u.id = r.collector_id
		WHERE r.deleted_at IS NULL
		  AND ($1::date IS NULL OR r.route_date >= $1)
		  AND ($2::date IS NULL OR r.route_date <= $2)
		ORDER BY r.route_date DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.CollectorID, &rt.Collector, &rt.RouteDate, &rt.Notes, &rt.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r RouteRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	var rt domain.Route
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT r.id, r.collector_id, u.name, r.route_date, r.notes, r.created_at
		FROM routes r
		JOIN users u ON u.id = r.collector_id
		WHERE r.id=$1 AND r.deleted_at IS NULL
	`, id).Scan(&rt.ID, &rt.CollectorID, &rt.Collector, &rt.RouteDate, &rt.Notes, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// GetForCollectorOn returns the collector's route for one calendar date.
func (r RouteRepository) GetForCollectorOn(ctx context.Context, collectorID uuid.UUID, date time.Time) (*domain.Route, error) {
	var rt domain.Route
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT r.id, r.collector_id, u.name, r.route_date, r.notes, r.created_at
		FROM routes r
		JOIN users u ON u.id = r.collector_id
		WHERE r.collector_id=$1 AND r.route_date=$2 AND r.deleted_at IS NULL
	`, collectorID, date).Scan(&rt.ID, &rt.CollectorID, &rt.Collector, &rt.RouteDate, &rt.Notes, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

type AddAssignmentParams struct {
	RouteID        uuid.UUID
	ClientID       uuid.UUID
	ScheduleItemID *uuid.UUID
	Position       int
}

func (r RouteRepository) AddAssignment(ctx context.Context, p AddAssignmentParams) (*domain.RouteAssignment, error) {
	var a domain.RouteAssignment
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO route_assignments (route_id, client_id, schedule_item_id, position, status, created_at)
		VALUES ($1,$2,$3,$4,'pending', now())
		RETURNING id, route_id, client_id, schedule_item_id, position, status, created_at
	`, p.RouteID, p.ClientID, p.ScheduleItemID, p.Position).Scan(
		&a.ID, &a.RouteID, &a.ClientID, &a.ScheduleItemID, &a.Position, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r RouteRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*domain.RouteAssignment, error) {
	var a domain.RouteAssignment
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, route_id, client_id, schedule_item_id, position, status, created_at
		FROM route_assignments
		WHERE id=$1
	`, id).Scan(&a.ID, &a.RouteID, &a.ClientID, &a.ScheduleItemID, &a.Position, &a.Status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAssignments returns a route's visits in order, with the client and
// the currently linked installment joined in for the collector's day view.
func (r RouteRepository) ListAssignments(ctx context.Context, routeID uuid.UUID) ([]domain.RouteAssignment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT a.id, a.route_id, a.client_id, a.schedule_item_id, a.position, a.status, a.created_at,
		       c.id, c.name, c.document_id, c.phone, c.address, c.created_at, c.updated_at,
		       s.id, s.debt_id, s.installment_number, s.due_date, s.amount, s.status
		FROM route_assignments a
		JOIN clients c ON c.id = a.client_id
		LEFT JOIN payment_schedule s ON s.id = a.schedule_item_id
		WHERE a.route_id=$1
		ORDER BY a.position ASC, a.created_at ASC
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.RouteAssignment
	for rows.Next() {
		var (
			a      domain.RouteAssignment
			client domain.Client
			itemID *uuid.UUID
			debtID *uuid.UUID
			number *int
			dueAt  *time.Time
			amount *decimal.Decimal
			status *string
		)
		if err := rows.Scan(
			&a.ID, &a.RouteID, &a.ClientID, &a.ScheduleItemID, &a.Position, &a.Status, &a.CreatedAt,
			&client.ID, &client.Name, &client.DocumentID, &client.Phone, &client.Address, &client.CreatedAt, &client.UpdatedAt,
			&itemID, &debtID, &number, &dueAt, &amount, &status,
		); err != nil {
			return nil, err
		}
		a.Client = &client
		if itemID != nil {
			a.DueItem = &domain.ScheduleItem{
				ID:                *itemID,
				DebtID:            *debtID,
				InstallmentNumber: *number,
				DueDate:           *dueAt,
				Amount:            *amount,
				Status:            domain.InstallmentStatus(*status),
			}
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r RouteRepository) SetAssignmentStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) error {
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE route_assignments SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveAssignment deletes a visit from a route. Visits that already have
// a payment recorded cannot be removed.
func (r RouteRepository) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		DELETE FROM route_assignments
		WHERE id=$1 AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.assignment_id=$1)
	`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
