// Package metrics defines the Prometheus collectors for step application
// and serves them for scraping.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Document outcomes recorded by ObserveDocument.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics holds the collectors of a treedoc process.
type Metrics struct {
	StepsTotal        *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	DocumentsTotal    *prometheus.CounterVec
	DocumentsInFlight prometheus.Gauge
	RunsTotal         prometheus.Counter
	RunDuration       prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses
// a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		StepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treedoc_steps_total",
				Help: "Steps applied, by step type and result (ok, failed).",
			},
			[]string{"step_type", "result"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "treedoc_step_duration_seconds",
				Help:    "Time spent applying a single step.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"step_type"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treedoc_documents_total",
				Help: "Documents processed, by status (ok, failed).",
			},
			[]string{"status"},
		),
		DocumentsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "treedoc_documents_in_flight",
				Help: "Documents currently being processed.",
			},
		),
		RunsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "treedoc_runs_total",
				Help: "Batch runs started, including watch mode reruns.",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "treedoc_run_duration_seconds",
				Help:    "Wall time of a batch run.",
				Buckets: prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.StepsTotal,
		m.StepDuration,
		m.DocumentsTotal,
		m.DocumentsInFlight,
		m.RunsTotal,
		m.RunDuration,
	)
	return m
}

// ObserveStep records one step application.
func (m *Metrics) ObserveStep(stepType string, ok bool, d time.Duration) {
	result := StatusOK
	if !ok {
		result = StatusFailed
	}
	m.StepsTotal.WithLabelValues(stepType, result).Inc()
	m.StepDuration.WithLabelValues(stepType).Observe(d.Seconds())
}

// ObserveDocument records a finished document.
func (m *Metrics) ObserveDocument(status string) {
	m.DocumentsTotal.WithLabelValues(status).Inc()
}

// ObserveRun records a finished batch run.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(d.Seconds())
}

// Handler returns the scrape handler for the registry the collectors
// were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Server serves /metrics.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// StartServer listens on addr and serves /metrics in the background.
func StartServer(addr string, m *Metrics, logger logrus.FieldLogger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	s := &Server{
		srv: &http.Server{
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		ln: ln,
	}

	go func() {
		logger.WithField("addr", ln.Addr().String()).Info("metrics server listening")
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server error")
		}
	}()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
