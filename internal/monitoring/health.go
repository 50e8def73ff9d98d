package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

type HealthChecker struct {
	mu             sync.RWMutex
	lastValidation time.Time
	lastHeatPct    float64
	auditAvailable bool
	errors         []string
}

type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	LastValidation time.Time `json:"last_validation"`
	PortfolioHeat  float64   `json:"portfolio_heat_pct"`
	AuditAvailable bool      `json:"audit_available"`
	Uptime         string    `json:"uptime"`
	Errors         []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		auditAvailable: true,
		errors:         make([]string, 0),
	}
}

// MarkValidation records the time of the most recent validation
func (h *HealthChecker) MarkValidation(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastValidation = at
}

// SetPortfolioHeat records the latest adjusted portfolio heat
func (h *HealthChecker) SetPortfolioHeat(pct float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastHeatPct = pct
}

// SetAuditAvailable flags whether the audit recorder is accepting writes
func (h *HealthChecker) SetAuditAvailable(available bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.auditAvailable = available
}

// AddError appends an error to the health report
func (h *HealthChecker) AddError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.auditAvailable {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		LastValidation: h.lastValidation,
		PortfolioHeat:  h.lastHeatPct,
		AuditAvailable: h.auditAvailable,
		Uptime:         time.Since(startTime).String(),
		Errors:         h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
