package metrics

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry               *prometheus.Registry
	OrdersCreatedTotal     prometheus.Counter
	OrderFailuresTotal     *prometheus.CounterVec
	PaymentsVerifiedTotal  *prometheus.CounterVec
	BargainsCreatedTotal   prometheus.Counter
	ChallengesCreatedTotal prometheus.Counter
	NegotiationsExpired    *prometheus.CounterVec
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestLatency     *prometheus.HistogramVec
	APIErrorsTotal         *prometheus.CounterVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		OrderFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Order creations rejected, by reason.",
		}, []string{"reason"}),
		PaymentsVerifiedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_verified_total",
			Help:      "Payment verifications, by result.",
		}, []string{"result"}),
		BargainsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bargains_created_total",
			Help:      "Total number of bargains opened.",
		}),
		ChallengesCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_created_total",
			Help:      "Total number of price challenges posted.",
		}),
		NegotiationsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_expired_total",
			Help:      "Bargains and challenges expired by the sweeper.",
		}, []string{"kind"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "API errors by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		m.OrdersCreatedTotal,
		m.OrderFailuresTotal,
		m.PaymentsVerifiedTotal,
		m.BargainsCreatedTotal,
		m.ChallengesCreatedTotal,
		m.NegotiationsExpired,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.APIErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// NewMetricsServer builds the HTTP server exposing /metrics. It returns nil
// when no port is configured.
func NewMetricsServer(port string, registry *prometheus.Registry, log logger.Logger) *http.Server {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	log.Infof("Prometheus metrics server listening on :%s/metrics", port)
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
