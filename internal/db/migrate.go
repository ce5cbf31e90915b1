package db

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so the bootstrap can run on every start.
func Migrate(ctx context.Context, p *Postgres) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL,
			email text NOT NULL UNIQUE,
			phone text NOT NULL DEFAULT '',
			role text NOT NULL DEFAULT 'collector',
			password_hash text,
			is_provider boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL,
			document_id text NOT NULL DEFAULT '',
			phone text NOT NULL DEFAULT '',
			address text NOT NULL DEFAULT '',
			created_by uuid REFERENCES users(id),
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS debts (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			client_id uuid NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,
			total_amount numeric(14,2) NOT NULL CHECK (total_amount > 0),
			installment_amount numeric(14,2) NOT NULL CHECK (installment_amount > 0),
			frequency text NOT NULL CHECK (frequency IN ('daily','weekly')),
			start_date date NOT NULL,
			status text NOT NULL DEFAULT 'active' CHECK (status IN ('active','completed','cancelled')),
			created_by uuid REFERENCES users(id),
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_schedule (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			debt_id uuid NOT NULL REFERENCES debts(id) ON DELETE RESTRICT,
			installment_number int NOT NULL CHECK (installment_number >= 1),
			due_date date NOT NULL,
			amount numeric(14,2) NOT NULL CHECK (amount > 0),
			status text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','paid','overdue')),
			UNIQUE (debt_id, installment_number)
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			collector_id uuid NOT NULL REFERENCES users(id),
			route_date date NOT NULL,
			notes text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now(),
			deleted_at timestamptz,
			UNIQUE (collector_id, route_date)
		)`,
		`CREATE TABLE IF NOT EXISTS route_assignments (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			route_id uuid NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
			client_id uuid NOT NULL REFERENCES clients(id),
			schedule_item_id uuid REFERENCES payment_schedule(id),
			position int NOT NULL DEFAULT 0,
			status text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','visited')),
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		// One outcome per visit, enforced by the store rather than a
		// read-then-insert check.
		`CREATE TABLE IF NOT EXISTS payments (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			assignment_id uuid NOT NULL UNIQUE REFERENCES route_assignments(id),
			debt_id uuid NOT NULL REFERENCES debts(id),
			schedule_item_id uuid REFERENCES payment_schedule(id),
			status text NOT NULL CHECK (status IN ('paid','not_paid','client_absent')),
			amount_paid numeric(14,2),
			evidence_photo text,
			notes text NOT NULL DEFAULT '',
			recorded_by uuid NOT NULL REFERENCES users(id),
			recorded_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_client ON debts(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_debt_due ON payment_schedule(debt_id, due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_route ON route_assignments(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_recorded_at ON payments(recorded_at)`,
	}

	for _, stmt := range stmts {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
