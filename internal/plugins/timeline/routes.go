package timeline

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up all timeline routes on the API group. Marker
// generation is a read over stored definitions, so no token is required.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.POST("/timeline/markers", h.Generate)
}
