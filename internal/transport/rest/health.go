package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	components map[string]Pinger
}

// NewHealthHandler checks each named component on readiness probes.
func NewHealthHandler(components map[string]Pinger) *HealthHandler {
	return &HealthHandler{components: components}
}

// Ping is the liveness probe.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Health is the readiness probe: 503 when any component fails its ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(h.components)),
	}

	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := check(r.Context(), h.components[name])
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func check(ctx context.Context, p Pinger) CheckEntry {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := p.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
