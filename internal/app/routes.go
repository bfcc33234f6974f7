package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gioh-mkv/almanac/internal/plugins/calendars"
	"github.com/gioh-mkv/almanac/internal/plugins/timeline"
)

// RegisterRoutes sets up all application routes. It registers public routes
// directly and delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container health monitoring. Verifies the
	// DB and Redis are actually reachable, not just that the process is up.
	e.GET("/healthz", func(c echo.Context) error {
		// Bound the probes so a hung dependency can't hang the probe.
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if err := a.DB.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})

	// --- Plugin Wiring ---
	calRepo := calendars.NewRepository(a.DB)
	calCache := calendars.NewCache(a.Redis)
	calSvc := calendars.NewService(calRepo, calCache)
	calHandler := calendars.NewHandler(calSvc)

	tlSvc := timeline.NewService(calSvc)
	tlHandler := timeline.NewHandler(tlSvc)

	// --- API Routes ---
	api := e.Group("/api/v1")
	calendars.RegisterRoutes(api, calHandler, a.Config.API.TokenHash)
	timeline.RegisterRoutes(api, tlHandler)
}
