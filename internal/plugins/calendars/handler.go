package calendars

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// maxImportSize bounds import payloads. A calendar definition measured in
// megabytes is an attack, not a calendar.
const maxImportSize = 2 << 20

// Handler processes HTTP requests for the calendars plugin.
type Handler struct {
	svc Service
}

// NewHandler creates a new calendars Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List returns all calendars without sub-resources.
// GET /api/v1/calendars
func (h *Handler) List(c echo.Context) error {
	defs, err := h.svc.ListCalendars(c.Request().Context())
	if err != nil {
		return err
	}
	if defs == nil {
		defs = []Definition{}
	}
	return c.JSON(http.StatusOK, defs)
}

// Create stores a new calendar definition.
// POST /api/v1/calendars
func (h *Handler) Create(c echo.Context) error {
	var input CreateCalendarInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid calendar JSON")
	}

	def, err := h.svc.CreateCalendar(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, def)
}

// Get returns one calendar with all sub-resources.
// GET /api/v1/calendars/:id
func (h *Handler) Get(c echo.Context) error {
	def, err := h.svc.GetCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// Update replaces a calendar definition.
// PUT /api/v1/calendars/:id
func (h *Handler) Update(c echo.Context) error {
	var input UpdateCalendarInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid calendar JSON")
	}

	def, err := h.svc.UpdateCalendar(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// Delete removes a calendar.
// DELETE /api/v1/calendars/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.DeleteCalendar(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetMonths replaces the month sequence.
// PUT /api/v1/calendars/:id/months
func (h *Handler) SetMonths(c echo.Context) error {
	var months []MonthDef
	if err := c.Bind(&months); err != nil {
		return apperror.NewBadRequest("invalid months JSON")
	}
	def, err := h.svc.ReplaceMonths(c.Request().Context(), c.Param("id"), months)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// SetLeapRules replaces the leap rule chain.
// PUT /api/v1/calendars/:id/leap-rules
func (h *Handler) SetLeapRules(c echo.Context) error {
	var rules []LeapRuleDef
	if err := c.Bind(&rules); err != nil {
		return apperror.NewBadRequest("invalid leap rules JSON")
	}
	def, err := h.svc.ReplaceLeapRules(c.Request().Context(), c.Param("id"), rules)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// SetLookupEntries replaces the lookup table.
// PUT /api/v1/calendars/:id/lookup
func (h *Handler) SetLookupEntries(c echo.Context) error {
	var entries []LookupEntry
	if err := c.Bind(&entries); err != nil {
		return apperror.NewBadRequest("invalid lookup entries JSON")
	}
	def, err := h.svc.ReplaceLookupEntries(c.Request().Context(), c.Param("id"), entries)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// SetIntercalaryDays replaces the intercalary days.
// PUT /api/v1/calendars/:id/intercalary
func (h *Handler) SetIntercalaryDays(c echo.Context) error {
	var days []IntercalaryDef
	if err := c.Bind(&days); err != nil {
		return apperror.NewBadRequest("invalid intercalary days JSON")
	}
	def, err := h.svc.ReplaceIntercalaryDays(c.Request().Context(), c.Param("id"), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// SetSeasons replaces the seasons.
// PUT /api/v1/calendars/:id/seasons
func (h *Handler) SetSeasons(c echo.Context) error {
	var seasons []SeasonDef
	if err := c.Bind(&seasons); err != nil {
		return apperror.NewBadRequest("invalid seasons JSON")
	}
	def, err := h.svc.ReplaceSeasons(c.Request().Context(), c.Param("id"), seasons)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// SetHolidays replaces the holidays.
// PUT /api/v1/calendars/:id/holidays
func (h *Handler) SetHolidays(c echo.Context) error {
	var holidays []HolidayDef
	if err := c.Bind(&holidays); err != nil {
		return apperror.NewBadRequest("invalid holidays JSON")
	}
	def, err := h.svc.ReplaceHolidays(c.Request().Context(), c.Param("id"), holidays)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// Validate runs structural checks over a stored definition.
// GET /api/v1/calendars/:id/validate
func (h *Handler) Validate(c echo.Context) error {
	resp, err := h.svc.ValidateCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Convert re-expresses a date from one calendar in another.
// POST /api/v1/convert
func (h *Handler) Convert(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid conversion request")
	}
	if req.FromCalendarID == "" || req.ToCalendarID == "" {
		return apperror.NewValidation("from_calendar_id and to_calendar_id are required")
	}

	resp, err := h.svc.Convert(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// dateBody is the shared request shape for single-date computations.
type dateBody struct {
	Date DateParam `json:"date"`
}

// ToOffset computes the absolute day offset of a date.
// POST /api/v1/calendars/:id/offset
func (h *Handler) ToOffset(c echo.Context) error {
	var body dateBody
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid date JSON")
	}

	resp, err := h.svc.DateToOffset(c.Request().Context(), c.Param("id"), body.Date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// FromOffset maps an absolute day offset to a calendar date.
// GET /api/v1/calendars/:id/date?offset=N
func (h *Handler) FromOffset(c echo.Context) error {
	offset, err := strconv.ParseInt(c.QueryParam("offset"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("offset must be an integer")
	}

	resp, err := h.svc.OffsetToDate(c.Request().Context(), c.Param("id"), offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ToTimestamp maps a date onto the Unix millisecond timeline.
// POST /api/v1/calendars/:id/timestamp
func (h *Handler) ToTimestamp(c echo.Context) error {
	var body dateBody
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid date JSON")
	}

	resp, err := h.svc.DateToTimestamp(c.Request().Context(), c.Param("id"), body.Date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// FromTimestamp maps a Unix millisecond timestamp into the calendar.
// GET /api/v1/calendars/:id/from-timestamp?timestamp_ms=N
func (h *Handler) FromTimestamp(c echo.Context) error {
	ts, err := strconv.ParseInt(c.QueryParam("timestamp_ms"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("timestamp_ms must be an integer")
	}

	resp, err := h.svc.TimestampToDate(c.Request().Context(), c.Param("id"), ts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// DayInfo describes one date: intercalary day, season, holidays.
// POST /api/v1/calendars/:id/day-info
func (h *Handler) DayInfo(c echo.Context) error {
	var body dateBody
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid date JSON")
	}

	resp, err := h.svc.DayInfo(c.Request().Context(), c.Param("id"), body.Date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Import accepts a raw calendar file (native JSON, YAML, or Markdown with
// YAML front matter) and stores it as a new calendar.
// POST /api/v1/calendars/import
func (h *Handler) Import(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize+1))
	if err != nil {
		return apperror.NewBadRequest("reading import payload failed")
	}
	if len(data) > maxImportSize {
		return apperror.NewValidation(fmt.Sprintf("import payload exceeds %d bytes", maxImportSize))
	}

	def, err := h.svc.Import(c.Request().Context(), data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, def)
}

// ExportCalendar returns the portable native-format JSON for a calendar.
// GET /api/v1/calendars/:id/export
func (h *Handler) ExportCalendar(c echo.Context) error {
	export, err := h.svc.Export(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Calendar.Name+".calendar.json"))
	return c.JSON(http.StatusOK, export)
}
