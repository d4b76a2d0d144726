// Package metrics exposes HTTP and domain metrics for Prometheus.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ndt_worklog"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	respTime *prometheus.SummaryVec
	inFlight prometheus.Gauge

	entriesCreated prometheus.Counter
	exports        *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	logins         *prometheus.CounterVec
	expiryWarnings *prometheus.GaugeVec
}

// New registers the collectors on reg. Collectors already registered there
// are reused, so building twice against the default registry is safe.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer, instanceID string) *Metrics {
	constLabels := prometheus.Labels{"instance_id": instanceID}
	m := &Metrics{gatherer: gatherer}

	m.respTime = register(reg, prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:   namespace,
		Subsystem:   "http",
		Name:        "resp_time_ms",
		Help:        "HTTP response time in milliseconds by route.",
		ConstLabels: constLabels,
		Objectives: map[float64]float64{
			0.5:  0.01,
			0.9:  0.01,
			0.99: 0.001,
		},
	}, []string{"method", "pattern", "status"}))

	m.inFlight = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "http",
		Name:        "in_flight_requests",
		Help:        "Requests currently being served.",
		ConstLabels: constLabels,
	}))

	m.entriesCreated = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "work_hour_entries_created_total",
		Help:        "Work-hour entries created.",
		ConstLabels: constLabels,
	}))

	m.exports = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "exports_total",
		Help:        "CSV exports generated, by scope.",
		ConstLabels: constLabels,
	}, []string{"scope"}))

	m.uploads = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "uploads_total",
		Help:        "File uploads by field and result.",
		ConstLabels: constLabels,
	}, []string{"field", "result"}))

	m.logins = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "logins_total",
		Help:        "Login attempts by method and result.",
		ConstLabels: constLabels,
	}, []string{"method", "result"}))

	m.expiryWarnings = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "expiry_warnings",
		Help:        "Items expiring within the warning window at the last scan, by kind.",
		ConstLabels: constLabels,
	}, []string{"kind"}))

	return m
}

// NewDefault registers on the global Prometheus registry.
func NewDefault(instanceID string) *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, instanceID)
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(C)
		}
		panic(err)
	}
	return c
}

// ResponseTime observes handler latency per matched route.
func (m *Metrics) ResponseTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		defer func() {
			pattern := c.FullPath()
			if pattern == "" {
				pattern = "unmatched"
			}
			m.respTime.WithLabelValues(c.Request.Method, pattern, strconv.Itoa(c.Writer.Status())).
				Observe(float64(time.Since(start).Milliseconds()))
		}()
		c.Next()
	}
}

// InFlight tracks concurrently served requests.
func (m *Metrics) InFlight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		c.Next()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	g := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		g = m.gatherer
	}
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func (m *Metrics) EntryCreated() {
	if m != nil {
		m.entriesCreated.Inc()
	}
}

// ExportGenerated counts an export; scope is "own" or "all".
func (m *Metrics) ExportGenerated(scope string) {
	if m != nil {
		m.exports.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) Upload(field string, err error) {
	if m != nil {
		m.uploads.WithLabelValues(field, result(err)).Inc()
	}
}

func (m *Metrics) Login(method string, err error) {
	if m != nil {
		m.logins.WithLabelValues(method, result(err)).Inc()
	}
}

// ExpiryWarnings records the outcome of an expiry scan.
func (m *Metrics) ExpiryWarnings(kind string, n int) {
	if m != nil {
		m.expiryWarnings.WithLabelValues(kind).Set(float64(n))
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
