package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/httpmiddleware"
	"github.com/cruzverde/attendance/internal/metrics"
)

const maxBodyBytes = 1 << 20

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	CORSOrigins     []string
	RateLimitPerMin int
	RequestTimeout  time.Duration
	Logger          *zap.Logger
	Metrics         *metrics.Collector
	Gatherer        prometheus.Gatherer
}

// NewRouter mounts every route of h.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Logger(logger, "/healthz", "/metrics"))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.GinMiddleware())
	}
	corsCfg := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(opts.RateLimitPerMin, opts.RateLimitPerMin).GinMiddleware())
	r.Use(httpmiddleware.BodyLimit(maxBodyBytes))
	r.Use(httpmiddleware.Timeout(opts.RequestTimeout))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Message: "route not found"})
	})

	r.GET("/", h.banner)
	r.GET("/healthz", h.healthz)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	authn := h.gate.Middleware()

	a := r.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.GET("/me", authn, h.me)
	a.POST("/logout", authn, h.logout)
	a.PUT("/password", authn, h.changePassword)

	att := r.Group("/attendance", authn)
	att.POST("/checkin", h.checkIn)
	att.PUT("/checkout/:id", h.checkOut)
	att.GET("/my", h.myAttendances)
	att.GET("/active", h.activeSession)
	att.GET("/summary", h.mySummary)

	admin := r.Group("/admin", authn, h.gate.RequireRole(account.RoleAdmin))
	admin.GET("/volunteers", h.listVolunteers)
	admin.PUT("/volunteers/:id/toggle", h.toggleVolunteer)
	admin.GET("/attendances", h.listAttendances)
	admin.GET("/reports", h.reportSummary)
	admin.GET("/reports/export", h.exportReport)
	admin.GET("/stats", h.stats)
	if h.feed != nil {
		admin.GET("/activity", h.recentActivity)
	}

	return r
}
