// Package health aggregates dependency checks for the /health endpoint.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one dependency failed.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing or timed out health check.
	CheckError CheckResult = "error"
)

// Check names in Report.Checks.
const (
	CheckDatabase      = "database"
	CheckSearchBackend = "search_backend"
)

// DefaultCheckTimeout bounds each dependency check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name string
	run  func(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	checks  []namedCheck
	timeout time.Duration
}

// New creates a Service. backend can be nil when remote search is disabled.
func New(db DBPinger, backend BackendChecker) *Service {
	s := &Service{timeout: DefaultCheckTimeout}
	s.checks = append(s.checks, namedCheck{name: CheckDatabase, run: db.Ping})
	if backend != nil {
		s.checks = append(s.checks, namedCheck{name: CheckSearchBackend, run: backend.HealthCheck})
	}
	return s
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every check concurrently, each bounded by the check timeout.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.checks))

	var wg sync.WaitGroup
	for i, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			results[i] = CheckOK
			if err := c.run(cctx); err != nil {
				results[i] = CheckError
			}
		}()
	}
	wg.Wait()

	status := Healthy
	checks := make(map[string]CheckResult, len(s.checks))
	for i, c := range s.checks {
		checks[c.name] = results[i]
		if results[i] == CheckError {
			status = Degraded
		}
	}
	return Report{Status: status, Checks: checks}
}
