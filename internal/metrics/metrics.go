package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Decisions
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisions_total",
			Help: "Total complaint decisions",
		},
		[]string{"decision", "source"}, // refund|deny|escalate, policy|ml|system
	)
	FraudFlagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fraud_flagged_total",
			Help: "Decisions flagged suspicious or high risk",
		},
	)

	// Mailer
	EmailsQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_queued_total",
			Help: "Decision emails handed to the worker pool",
		},
	)
	EmailsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Decision emails that failed to send",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// handler for the /metrics endpoint
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(FraudFlagged)
	prometheus.MustRegister(EmailsQueued)
	prometheus.MustRegister(EmailsFailed)
	prometheus.MustRegister(WorkerQueueDepth)
}
