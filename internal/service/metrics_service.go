package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stellaredu/consult-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the auth pipeline. All methods are nil-receiver safe so wiring can skip
// metrics entirely in tests.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	loginTotal      *prometheus.CounterVec
	resolutionTotal *prometheus.CounterVec
	otpSends        prometheus.Counter
	passwordResets  prometheus.Counter
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
	}, []string{"outcome"})

	resolutionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_resolutions_total",
		Help: "Token resolutions by source and outcome",
	}, []string{"source", "outcome"})

	otpSends := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_otp_sends_total",
		Help: "Verification codes issued",
	})

	passwordResets := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_password_resets_total",
		Help: "Completed password resets",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, loginTotal, resolutionTotal, otpSends, passwordResets, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		loginTotal:      loginTotal,
		resolutionTotal: resolutionTotal,
		otpSends:        otpSends,
		passwordResets:  passwordResets,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordLogin counts a login attempt outcome.
func (m *MetricsService) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenResolution counts a resolution attempt per source.
func (m *MetricsService) RecordTokenResolution(source models.TokenSource, ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "resolved"
	}
	m.resolutionTotal.WithLabelValues(string(source), outcome).Inc()
}

// RecordOTPSend counts an issued verification code.
func (m *MetricsService) RecordOTPSend() {
	if m == nil {
		return
	}
	m.otpSends.Inc()
}

// RecordPasswordReset counts a completed password reset.
func (m *MetricsService) RecordPasswordReset() {
	if m == nil {
		return
	}
	m.passwordResets.Inc()
}
