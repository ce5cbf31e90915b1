package repository

import (
	"errors"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint rejects a write.
var ErrDuplicate = errors.New("already exists")

// ErrReferenced is returned when referential integrity blocks a delete.
var ErrReferenced = errors.New("still referenced")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || db.IsUniqueViolation(err)
}
