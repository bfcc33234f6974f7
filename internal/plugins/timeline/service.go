package timeline

import (
	"context"
	"fmt"

	"github.com/gioh-mkv/almanac/internal/apperror"
	"github.com/gioh-mkv/almanac/internal/chronology"
	"github.com/gioh-mkv/almanac/internal/plugins/calendars"
)

// maxMarkers caps a single response. A range too wide for its scale is a
// client error, not a reason to build a multi-megabyte marker set.
const maxMarkers = 5000

// Service defines business logic for the timeline plugin.
type Service interface {
	GenerateMarkers(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// service is the default Service implementation. It reads definitions
// through the calendars plugin so cached definitions are reused.
type service struct {
	calendars calendars.Service
}

// NewService creates a timeline Service on top of the calendars plugin.
func NewService(cal calendars.Service) Service {
	return &service{calendars: cal}
}

// GenerateMarkers walks the requested real-world range day by day and emits
// tick marks at the requested granularity plus holiday, intercalary, and
// season overlays.
func (s *service) GenerateMarkers(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !req.Scale.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown scale %q; use hour, day, month, or year", req.Scale))
	}
	if req.ToMs <= req.FromMs {
		return nil, apperror.NewValidation("to_ms must be after from_ms")
	}

	def, err := s.calendars.GetCalendar(ctx, req.CalendarID)
	if err != nil {
		return nil, err
	}
	cal := def.Chronology()

	rep := &chronology.Report{}
	epoch, source := chronology.EpochTimestamp(cal, rep)

	startOffset := floorDiv(req.FromMs-epoch, chronology.MillisPerDay)
	endOffset := floorDiv(req.ToMs-epoch, chronology.MillisPerDay)

	if overBudget(startOffset, endOffset, req.Scale, cal) {
		return nil, apperror.NewValidation("range too wide for the requested scale; zoom in or coarsen the scale")
	}

	resp := &GenerateResponse{EpochSource: source.String()}
	seasonOpen := map[string]int{} // season name -> index into resp.Markers

	for off := startOffset; off <= endOffset && len(resp.Markers) < maxMarkers; off++ {
		date := chronology.FromAbsoluteOffset(off, cal, 0, rep)
		dayStart := epoch + off*chronology.MillisPerDay

		s.appendTicks(resp, cal, date, off, dayStart, req.Scale)
		s.appendOverlays(resp, cal, date, dayStart, rep, seasonOpen)
	}

	// Close any season band still open at the range edge.
	for _, idx := range seasonOpen {
		if resp.Markers[idx].EndMs == 0 {
			resp.Markers[idx].EndMs = req.ToMs
		}
	}

	resp.Warnings = rep.Warnings()
	return resp, nil
}

// appendTicks emits the granularity tick for one day, if the day starts a
// period of the requested scale.
func (s *service) appendTicks(resp *GenerateResponse, cal *chronology.Calendar, date chronology.CalendarDate, off, dayStart int64, scale Scale) {
	monthIdx, _ := date.Month.Index()

	switch scale {
	case ScaleYear:
		if monthIdx == 1 && date.Day == 1 {
			resp.Markers = append(resp.Markers, Marker{
				TimestampMs: dayStart,
				Label:       fmt.Sprintf("Year %d", date.Year),
				Kind:        KindTick,
			})
		}

	case ScaleMonth:
		if date.Day == 1 {
			resp.Markers = append(resp.Markers, Marker{
				TimestampMs: dayStart,
				Label:       fmt.Sprintf("%s %d", cal.MonthName(monthIdx), date.Year),
				Kind:        KindTick,
			})
		}

	case ScaleDay:
		resp.Markers = append(resp.Markers, Marker{
			TimestampMs: dayStart,
			Label:       chronology.FormatDate(date, cal, chronology.PrecisionDay),
			Kind:        KindTick,
		})

	case ScaleHour:
		hours := cal.HoursPerDay
		if hours <= 0 {
			hours = chronology.DefaultHoursPerDay
		}
		hourMs := cal.DayMillis() / int64(hours)
		for h := 0; h < hours && len(resp.Markers) < maxMarkers; h++ {
			resp.Markers = append(resp.Markers, Marker{
				TimestampMs: dayStart + int64(h)*hourMs,
				Label:       fmt.Sprintf("%02d:00", h),
				Kind:        KindTick,
			})
		}
	}
}

// appendOverlays emits holiday, intercalary, and season markers for one day.
// Season bands open on the first in-range day of the season and close on
// the first day past it.
func (s *service) appendOverlays(resp *GenerateResponse, cal *chronology.Calendar, date chronology.CalendarDate, dayStart int64, rep *chronology.Report, seasonOpen map[string]int) {
	monthIdx, ok := date.Month.Resolve(cal)
	if !ok {
		return
	}

	dayOfYear := chronology.DayOfYear(date, cal, rep)
	if ic := cal.IntercalaryOn(dayOfYear); ic != nil {
		resp.Markers = append(resp.Markers, Marker{
			TimestampMs: dayStart,
			Label:       ic.Name,
			Kind:        KindIntercalary,
		})
	}

	for _, h := range cal.HolidaysOn(monthIdx, date.Day) {
		resp.Markers = append(resp.Markers, Marker{
			TimestampMs: dayStart,
			Label:       h.Name,
			Kind:        KindHoliday,
		})
	}

	season := cal.SeasonOn(monthIdx, date.Day)

	// Close bands for seasons this day is no longer in.
	for name, idx := range seasonOpen {
		if season == nil || season.Name != name {
			if resp.Markers[idx].EndMs == 0 {
				resp.Markers[idx].EndMs = dayStart
			}
			delete(seasonOpen, name)
		}
	}

	if season != nil {
		if _, open := seasonOpen[season.Name]; !open {
			resp.Markers = append(resp.Markers, Marker{
				TimestampMs: dayStart,
				Label:       season.Name,
				Kind:        KindSeason,
				Color:       season.Color,
			})
			seasonOpen[season.Name] = len(resp.Markers) - 1
		}
	}
}

// overBudget rejects ranges that would exceed the marker cap before any
// walking happens.
func overBudget(startOffset, endOffset int64, scale Scale, cal *chronology.Calendar) bool {
	days := endOffset - startOffset + 1
	switch scale {
	case ScaleHour:
		hours := cal.HoursPerDay
		if hours <= 0 {
			hours = chronology.DefaultHoursPerDay
		}
		return days*int64(hours) > maxMarkers
	default:
		return days > 400_000 // year/month/day ticks thin out; cap the walk itself
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
