package timeline

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// Handler processes HTTP requests for the timeline plugin.
type Handler struct {
	svc Service
}

// NewHandler creates a new timeline Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Generate builds a marker set for a calendar over a real-world range.
// POST /api/v1/timeline/markers
func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid timeline request")
	}
	if req.CalendarID == "" {
		return apperror.NewValidation("calendar_id is required")
	}

	resp, err := h.svc.GenerateMarkers(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
