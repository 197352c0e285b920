// Package metrics exposes Prometheus counters for attendance sessions and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cruzverde/attendance/internal/attendance"
)

// Collector records session and request metrics.
type Collector struct {
	checkIns        prometheus.Counter
	checkOuts       prometheus.Counter
	sessionMinutes  prometheus.Histogram
	durationClamped prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

var _ attendance.Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruzverde_checkins_total",
			Help: "Sessions opened.",
		}),
		checkOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruzverde_checkouts_total",
			Help: "Sessions closed.",
		}),
		sessionMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cruzverde_session_duration_minutes",
			Help:    "Length of closed sessions in minutes.",
			Buckets: []float64{15, 30, 60, 120, 240, 480, 720},
		}),
		durationClamped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruzverde_duration_clamped_total",
			Help: "Check-outs stamped before their check-in.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cruzverde_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.checkIns,
		c.checkOuts,
		c.sessionMinutes,
		c.durationClamped,
		c.httpRequests,
	)
	return c
}

func (c *Collector) RecordCheckIn() { c.checkIns.Inc() }

func (c *Collector) RecordCheckOut(minutes int) {
	c.checkOuts.Inc()
	c.sessionMinutes.Observe(float64(minutes))
}

func (c *Collector) RecordDurationClamped() { c.durationClamped.Inc() }

// RecordRequest counts one served request.
func (c *Collector) RecordRequest(method, route string, status int) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// GinMiddleware counts requests by matched route template.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.RecordRequest(ctx.Request.Method, route, ctx.Writer.Status())
	}
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
