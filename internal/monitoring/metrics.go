package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Validation metrics
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_validations_total",
			Help: "Total number of trade validations by outcome",
		},
		[]string{"pattern", "outcome"},
	)

	validationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_engine_validation_duration_seconds",
			Help:    "Distribution of validation pipeline durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pattern"},
	)

	stageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_stage_failures_total",
			Help: "Total number of pipeline rejections by failing stage",
		},
		[]string{"stage"},
	)

	// Portfolio metrics
	portfolioHeat = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_engine_portfolio_heat_pct",
			Help: "Portfolio heat as percent of equity",
		},
		[]string{"kind"},
	)

	// Override metrics
	overridesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_overrides_total",
			Help: "Total number of manual override requests by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(validationsTotal)
	prometheus.MustRegister(validationDuration)
	prometheus.MustRegister(stageFailuresTotal)
	prometheus.MustRegister(portfolioHeat)
	prometheus.MustRegister(overridesTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordValidation records a completed validation and its duration
func RecordValidation(pattern, outcome string, seconds float64) {
	validationsTotal.WithLabelValues(pattern, outcome).Inc()
	validationDuration.WithLabelValues(pattern).Observe(seconds)
}

// RecordStageFailure records a pipeline rejection at the given stage
func RecordStageFailure(stage string) {
	stageFailuresTotal.WithLabelValues(stage).Inc()
}

// UpdatePortfolioHeat updates a portfolio heat gauge
func UpdatePortfolioHeat(kind string, pct float64) {
	portfolioHeat.WithLabelValues(kind).Set(pct)
}

// RecordOverride records a manual override request outcome
func RecordOverride(outcome string) {
	overridesTotal.WithLabelValues(outcome).Inc()
}
