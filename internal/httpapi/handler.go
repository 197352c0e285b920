// Package httpapi is the JSON surface of the attendance service.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/activity"
	"github.com/cruzverde/attendance/internal/attendance"
	"github.com/cruzverde/attendance/internal/auth"
	"github.com/cruzverde/attendance/internal/report"
)

// HealthCheck probes one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) bool
}

// Handler serves every API route.
type Handler struct {
	accounts   *account.Service
	sessions   *attendance.Service
	reports    *report.Service
	gate       *auth.Gate
	feed       activity.Feed
	health     []HealthCheck
	logger     *zap.Logger
	production bool
	started    time.Time
}

// Config carries the collaborators of a Handler.
type Config struct {
	Accounts   *account.Service
	Sessions   *attendance.Service
	Reports    *report.Service
	Tokens     *auth.TokenManager
	Denylist   auth.Denylist
	Directory  auth.Directory
	Feed       activity.Feed
	Health     []HealthCheck
	Logger     *zap.Logger
	Production bool
}

// NewHandler wires the handler and its access gate.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		accounts:   cfg.Accounts,
		sessions:   cfg.Sessions,
		reports:    cfg.Reports,
		feed:       cfg.Feed,
		health:     cfg.Health,
		logger:     logger,
		production: cfg.Production,
		started:    time.Now(),
	}
	h.gate = auth.NewGate(cfg.Tokens, cfg.Denylist, cfg.Directory, logger, h.writeError)
	return h
}

func (h *Handler) banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cruz Verde attendance API"})
}

func (h *Handler) healthz(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}
	for _, hc := range h.health {
		healthy := hc.Check(c.Request.Context())
		checks[hc.Name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
		}
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
