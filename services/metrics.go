package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds every collector the app exports on /metrics
var MetricsRegistry = prometheus.NewRegistry()

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	reservationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonbook_reservations_created_total",
		Help: "Reservations written, by source",
	}, []string{"source"})

	bookingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessonbook_booking_conflicts_total",
		Help: "Reservation writes rejected because the slot was already taken",
	})

	bookingRequestsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessonbook_booking_requests_total",
		Help: "Request-a-quote submissions stored",
	})

	notificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonbook_notification_failures_total",
		Help: "Outbound emails that failed, by template",
	}, []string{"template"})

	invoiceFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lessonbook_invoice_failures_total",
		Help: "Invoice creations that failed at the billing provider",
	})

	webhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonbook_webhook_events_total",
		Help: "External booking events applied, by event and outcome",
	}, []string{"event", "outcome"})
)

func init() {
	MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		HTTPRequestsTotal,
		reservationsCreated,
		bookingConflicts,
		bookingRequestsCreated,
		notificationFailures,
		invoiceFailures,
		webhookEvents,
	)
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(MetricsRegistry, promhttp.HandlerOpts{})
}
