package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the auth API.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	loginTotal       *prometheus.CounterVec
	validationTotal  *prometheus.CounterVec
	revocationHits   prometheus.Counter
	revocationMisses prometheus.Counter
	cleanupDeleted   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	loginTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"result"})

	validationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_validations_total",
		Help: "Access token validations by outcome",
	}, []string{"result"})

	revocationHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_revocation_cache_hits_total",
		Help: "Revocation cache hits",
	})

	revocationMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_revocation_cache_misses_total",
		Help: "Revocation cache misses falling through to the blacklist store",
	})

	cleanupDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_cleanup_deleted_total",
		Help: "Rows deleted by the expired-token reaper",
	}, []string{"store"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, loginTotal, validationTotal, revocationHits, revocationMisses, cleanupDeleted, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		loginTotal:       loginTotal,
		validationTotal:  validationTotal,
		revocationHits:   revocationHits,
		revocationMisses: revocationMisses,
		cleanupDeleted:   cleanupDeleted,
	}
}

// Handler returns the Prometheus scrape handler.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveLogin records a login attempt outcome.
func (s *MetricsService) ObserveLogin(result string) {
	if s == nil {
		return
	}
	s.loginTotal.WithLabelValues(result).Inc()
}

// ObserveTokenValidation records a validation outcome.
func (s *MetricsService) ObserveTokenValidation(result string) {
	if s == nil {
		return
	}
	s.validationTotal.WithLabelValues(result).Inc()
}

// ObserveRevocationLookup records whether the revocation cache answered.
func (s *MetricsService) ObserveRevocationLookup(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.revocationHits.Inc()
		return
	}
	s.revocationMisses.Inc()
}

// ObserveCleanup records rows reaped from a store.
func (s *MetricsService) ObserveCleanup(store string, deleted int64) {
	if s == nil || deleted <= 0 {
		return
	}
	s.cleanupDeleted.WithLabelValues(store).Add(float64(deleted))
}
