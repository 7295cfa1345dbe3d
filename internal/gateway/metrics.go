package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============ Метрики внешних API вызовов ============

// UpstreamRequestDuration - латентность вызовов к внешним API
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "coinwatch",
		Subsystem: "gateway",
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API calls in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"provider", "operation"},
)

// UpstreamRequestErrors - количество неуспешных вызовов к внешним API
var UpstreamRequestErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinwatch",
		Subsystem: "gateway",
		Name:      "upstream_request_errors_total",
		Help:      "Total number of failed upstream API calls",
	},
	[]string{"provider", "operation"},
)
