package calendars

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gioh-mkv/almanac/internal/middleware"
)

// RegisterRoutes sets up all calendar routes on the API group. Reads are
// open; writes require the bearer token and are rate limited (imports parse
// attacker-controlled YAML, so they get a tighter budget).
func RegisterRoutes(api *echo.Group, h *Handler, tokenHash string) {
	// Read endpoints.
	api.GET("/calendars", h.List)
	api.GET("/calendars/:id", h.Get)
	api.GET("/calendars/:id/validate", h.Validate)
	api.GET("/calendars/:id/date", h.FromOffset)
	api.GET("/calendars/:id/from-timestamp", h.FromTimestamp)
	api.GET("/calendars/:id/export", h.ExportCalendar)

	// Conversion endpoints are reads over stored definitions.
	api.POST("/convert", h.Convert)
	api.POST("/calendars/:id/offset", h.ToOffset)
	api.POST("/calendars/:id/timestamp", h.ToTimestamp)
	api.POST("/calendars/:id/day-info", h.DayInfo)

	// Write endpoints.
	write := api.Group("", middleware.RequireToken(tokenHash),
		middleware.RateLimit(60, time.Minute))
	write.POST("/calendars", h.Create)
	write.PUT("/calendars/:id", h.Update)
	write.DELETE("/calendars/:id", h.Delete)
	write.PUT("/calendars/:id/months", h.SetMonths)
	write.PUT("/calendars/:id/leap-rules", h.SetLeapRules)
	write.PUT("/calendars/:id/lookup", h.SetLookupEntries)
	write.PUT("/calendars/:id/intercalary", h.SetIntercalaryDays)
	write.PUT("/calendars/:id/seasons", h.SetSeasons)
	write.PUT("/calendars/:id/holidays", h.SetHolidays)

	imports := api.Group("", middleware.RequireToken(tokenHash),
		middleware.RateLimit(10, time.Minute))
	imports.POST("/calendars/import", h.Import)
}
