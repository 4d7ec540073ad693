package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/smsotp/internal/pkg/config"
)

func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if underMaintenance(cfg, matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Error: "temporarily_unavailable", Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// underMaintenance reports whether route is listed in app.maintenance.endpoints.
// The list is read per request and follows config reloads. "*" blocks every
// route except /health.
func underMaintenance(cfg config.Config, route string) bool {
	if cfg == nil || route == "/health" {
		return false
	}
	endpoints := cfg.GetArray("app.maintenance.endpoints")
	return slices.Contains(endpoints, "*") || slices.Contains(endpoints, route)
}
