package resource

import (
	"context"
	"net/http"
)

// HealthPath is the backend liveness probe
const HealthPath = "/actuator/health"

// HealthStatus is the actuator response
type HealthStatus struct {
	Status     string                    `json:"status"`
	Components map[string]map[string]any `json:"components,omitempty"`
}

// Up reports whether the backend declared itself healthy
func (h HealthStatus) Up() bool {
	return h.Status == "UP"
}

// Health probes the backend. Failures are normalized like any resource call.
func Health(ctx context.Context, doer Doer, opts ...Option) (HealthStatus, error) {
	var status HealthStatus
	c := New[HealthStatus](doer, HealthPath, opts...)
	if err := c.Exec(ctx, http.MethodGet, "", nil, &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}
