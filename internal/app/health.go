package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/smsotp/internal/pkg/router"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// health reports readiness of the stores a login depends on.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Services: map[string]string{"database": "up"}}

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", "service", "database", "error", err)
		resp.Status = "degraded"
		resp.Services["database"] = "down"
	}

	if a.cacheConn != nil {
		resp.Services["redis"] = "up"
		if err := a.cacheConn.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "health check failed", "service", "redis", "error", err)
			resp.Status = "degraded"
			resp.Services["redis"] = "down"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	return router.JSON{Status: status, Body: resp}, nil
}
