package health

import "context"

// DBPinger checks favorites store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker checks that the search backend is reachable.
type BackendChecker interface {
	HealthCheck(ctx context.Context) error
}
