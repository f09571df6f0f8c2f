// file: metrics/prometheus.go
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus holds the collectors on a registry of its own.
type Prometheus struct {
	Registry *prometheus.Registry

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	verifications   *prometheus.CounterVec
	livePages       prometheus.Gauge
}

// NewPrometheus creates and registers the collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		Registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ctf_verifications_total",
				Help: "Answer verifications by outcome",
			},
			[]string{"outcome"},
		),
		livePages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctf_live_pages",
			Help: "Open catalog pages",
		}),
	}
	p.Registry.MustRegister(p.requestCounter, p.requestDuration, p.verifications, p.livePages)
	return p
}

func (p *Prometheus) VerificationOutcome(outcome string) {
	p.verifications.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) LivePages(n int) {
	p.livePages.Set(float64(n))
}

// Middleware counts and times every request by route.
func (p *Prometheus) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		p.requestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		p.requestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
