package ports

import "context"

// HealthChecker reports whether a backing dependency, such as the
// Postgres pool, is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}
