package storesearch

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/storesearch/internal/usecase/health"
)

// HealthStatus represents the aggregated health of the favorites store and
// the search backend.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component → "ok"/"error"
}

// Healthy reports whether every dependency answered.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	c.obs.observe("health", start, nil)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
