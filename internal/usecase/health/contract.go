package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an upstream model provider (embedding or chat).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
