package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	store     Pinger
	backend   Pinger
	timeout   time.Duration
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, store, backend Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		store:     store,
		backend:   backend,
		timeout:   3 * time.Second,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse reports each dependency as "ok" or its error
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Live handles GET /health/live
func (h *SystemHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. The store and the backend are probed in
// parallel; any failure answers 503.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	probes := map[string]Pinger{"store": h.store, "backend": h.backend}
	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(probes))}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for name, p := range probes {
		if p == nil {
			resp.Checks[name] = "disabled"
		}
	}
	for name, p := range probes {
		if p == nil {
			continue
		}
		g.Go(func() error {
			err := p.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Checks[name] = err.Error()
				return fmt.Errorf("%s: %w", name, err)
			}
			resp.Checks[name] = "ok"
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		resp.Status = "degraded"
		code := dto.ErrCodeBackendUnavailable
		if resp.Checks["store"] != "ok" && resp.Checks["store"] != "disabled" {
			code = dto.ErrCodeStoreUnavailable
		}
		logger.L(ctx).Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error: &dto.ErrorInfo{
				Code:      code,
				Message:   "One or more dependencies are unavailable",
				RequestID: middleware.GetRequestID(c),
			},
		})
		return
	}
	h.Success(c, resp)
}
