package repository

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

// SeedAdmin creates the bootstrap admin account when it does not exist.
// Idempotent: users.email is unique.
func (r UserRepository) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.DB.Pool.Exec(ctx, `
		INSERT INTO users (name, email, phone, role, password_hash, is_provider, created_at, updated_at)
		VALUES ('Administrador', $1, '', $2, $3, false, now(), now())
		ON CONFLICT (email) DO NOTHING
	`, email, domain.RoleAdmin, string(hash))
	return err
}
