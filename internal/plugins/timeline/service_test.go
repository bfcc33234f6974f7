package timeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/gioh-mkv/almanac/internal/apperror"
	"github.com/gioh-mkv/almanac/internal/chronology"
	"github.com/gioh-mkv/almanac/internal/plugins/calendars"
)

const dayMs = chronology.MillisPerDay

// mockCalendarService implements calendars.Service with only GetCalendar
// wired; the timeline never touches the rest.
type mockCalendarService struct {
	getCalendarFn func(ctx context.Context, id string) (*calendars.Definition, error)
}

func (m *mockCalendarService) GetCalendar(ctx context.Context, id string) (*calendars.Definition, error) {
	if m.getCalendarFn != nil {
		return m.getCalendarFn(ctx, id)
	}
	return nil, apperror.NewNotFound("calendar not found")
}

func (m *mockCalendarService) CreateCalendar(ctx context.Context, input calendars.CreateCalendarInput) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ListCalendars(ctx context.Context) ([]calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) UpdateCalendar(ctx context.Context, id string, input calendars.UpdateCalendarInput) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) DeleteCalendar(ctx context.Context, id string) error { return nil }

func (m *mockCalendarService) ValidateCalendar(ctx context.Context, id string) (*calendars.ValidationResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceMonths(ctx context.Context, id string, months []calendars.MonthDef) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceLeapRules(ctx context.Context, id string, rules []calendars.LeapRuleDef) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceLookupEntries(ctx context.Context, id string, entries []calendars.LookupEntry) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceIntercalaryDays(ctx context.Context, id string, days []calendars.IntercalaryDef) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceSeasons(ctx context.Context, id string, seasons []calendars.SeasonDef) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) ReplaceHolidays(ctx context.Context, id string, holidays []calendars.HolidayDef) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) Convert(ctx context.Context, req calendars.ConvertRequest) (*calendars.ConvertResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) DateToOffset(ctx context.Context, id string, date calendars.DateParam) (*calendars.OffsetResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) OffsetToDate(ctx context.Context, id string, offset int64) (*calendars.DateResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) DateToTimestamp(ctx context.Context, id string, date calendars.DateParam) (*calendars.TimestampResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) TimestampToDate(ctx context.Context, id string, timestampMs int64) (*calendars.DateResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) DayInfo(ctx context.Context, id string, date calendars.DateParam) (*calendars.DayInfoResponse, error) {
	return nil, nil
}

func (m *mockCalendarService) Import(ctx context.Context, data []byte) (*calendars.Definition, error) {
	return nil, nil
}

func (m *mockCalendarService) Export(ctx context.Context, id string) (*calendars.Export, error) {
	return nil, nil
}

// sixtyDayCalendar is a small anchored calendar: two 30-day months, a
// festival between them, a holiday, and one season covering the second
// month. Epoch day 0 is the Unix epoch, which keeps expected timestamps
// readable as offset * dayMs.
func sixtyDayCalendar() *calendars.Definition {
	ref := calendars.DateParam{Year: 0, Month: calendars.MonthByIndex(1), Day: 1}
	return &calendars.Definition{
		ID:            "cal-1",
		Name:          "Sixty",
		DaysPerYear:   61,
		ReferenceDate: &ref,
		EpochDate:     "1970-01-01",
		Months: []calendars.MonthDef{
			{Name: "One", Days: 30},
			{Name: "Two", Days: 30},
		},
		IntercalaryDays: []calendars.IntercalaryDef{
			{Name: "Festival", DayOfYear: 31},
		},
		Seasons: []calendars.SeasonDef{
			{Name: "Highsun", StartMonth: 2, StartDay: 1, EndMonth: 2, EndDay: 30, Color: "#fc0"},
		},
		Holidays: []calendars.HolidayDef{
			{Name: "Feast Day", Month: 1, Day: 2},
		},
	}
}

func fixedCalendarService(def *calendars.Definition) calendars.Service {
	return &mockCalendarService{
		getCalendarFn: func(ctx context.Context, id string) (*calendars.Definition, error) {
			if id == def.ID {
				return def, nil
			}
			return nil, apperror.NewNotFound("calendar not found")
		},
	}
}

func markersOfKind(markers []Marker, kind MarkerKind) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func TestGenerateMarkersDayScale(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     0,
		ToMs:       3 * dayMs,
		Scale:      ScaleDay,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}
	if resp.EpochSource != "explicit" {
		t.Errorf("EpochSource = %q, want explicit", resp.EpochSource)
	}

	ticks := markersOfKind(resp.Markers, KindTick)
	if len(ticks) != 4 {
		t.Fatalf("day ticks = %d, want 4 (days 0..3)", len(ticks))
	}
	if ticks[1].TimestampMs != dayMs {
		t.Errorf("second tick at %d, want %d", ticks[1].TimestampMs, dayMs)
	}

	holidays := markersOfKind(resp.Markers, KindHoliday)
	if len(holidays) != 1 || holidays[0].Label != "Feast Day" {
		t.Fatalf("holidays = %+v, want one Feast Day", holidays)
	}
	if holidays[0].TimestampMs != dayMs {
		t.Errorf("Feast Day at %d, want %d (month 1 day 2)", holidays[0].TimestampMs, dayMs)
	}
}

func TestGenerateMarkersYearScale(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     0,
		ToMs:       121 * dayMs,
		Scale:      ScaleYear,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}

	ticks := markersOfKind(resp.Markers, KindTick)
	if len(ticks) != 2 {
		t.Fatalf("year ticks = %d, want 2 (61-day years starting at 0 and 61)", len(ticks))
	}
	if ticks[0].Label != "Year 0" || ticks[1].Label != "Year 1" {
		t.Errorf("tick labels = %q, %q", ticks[0].Label, ticks[1].Label)
	}
	if ticks[1].TimestampMs != 61*dayMs {
		t.Errorf("Year 1 tick at %d, want %d", ticks[1].TimestampMs, 61*dayMs)
	}
}

func TestGenerateMarkersMonthScale(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     0,
		ToMs:       35 * dayMs,
		Scale:      ScaleMonth,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}

	ticks := markersOfKind(resp.Markers, KindTick)
	if len(ticks) != 2 {
		t.Fatalf("month ticks = %d, want 2", len(ticks))
	}
	if ticks[0].Label != "One 0" {
		t.Errorf("first month tick label = %q, want %q", ticks[0].Label, "One 0")
	}
	if ticks[1].Label != "Two 0" || ticks[1].TimestampMs != 30*dayMs {
		t.Errorf("second month tick = %+v, want Two 0 at day 30", ticks[1])
	}
}

func TestGenerateMarkersHourScale(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     0,
		ToMs:       dayMs - 1,
		Scale:      ScaleHour,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}

	ticks := markersOfKind(resp.Markers, KindTick)
	if len(ticks) != 24 {
		t.Fatalf("hour ticks = %d, want 24", len(ticks))
	}
	if ticks[0].Label != "00:00" || ticks[23].Label != "23:00" {
		t.Errorf("hour labels = %q .. %q", ticks[0].Label, ticks[23].Label)
	}
	if ticks[1].TimestampMs != dayMs/24 {
		t.Errorf("01:00 at %d, want %d", ticks[1].TimestampMs, dayMs/24)
	}
}

func TestGenerateMarkersIntercalaryAndSeason(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     29 * dayMs,
		ToMs:       65 * dayMs,
		Scale:      ScaleMonth,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}

	intercalary := markersOfKind(resp.Markers, KindIntercalary)
	if len(intercalary) != 1 || intercalary[0].Label != "Festival" {
		t.Fatalf("intercalary markers = %+v, want one Festival", intercalary)
	}
	if intercalary[0].TimestampMs != 30*dayMs {
		t.Errorf("Festival at %d, want %d (day-of-year 31)", intercalary[0].TimestampMs, 30*dayMs)
	}

	seasons := markersOfKind(resp.Markers, KindSeason)
	if len(seasons) != 1 {
		t.Fatalf("season markers = %d, want 1 band", len(seasons))
	}
	band := seasons[0]
	if band.Label != "Highsun" || band.Color != "#fc0" {
		t.Errorf("season band = %+v", band)
	}
	if band.TimestampMs != 30*dayMs {
		t.Errorf("band opens at %d, want day 30", band.TimestampMs)
	}
	// The 61-day year ends after the intercalary day; the next year's first
	// month starts at day 61 and closes the band there.
	if band.EndMs != 61*dayMs {
		t.Errorf("band closes at %d, want day 61", band.EndMs)
	}
}

func TestGenerateMarkersSeasonOpenAtRangeEdge(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	to := int64(45) * dayMs
	resp, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     30 * dayMs,
		ToMs:       to,
		Scale:      ScaleDay,
	})
	if err != nil {
		t.Fatalf("GenerateMarkers() error = %v", err)
	}

	seasons := markersOfKind(resp.Markers, KindSeason)
	if len(seasons) != 1 {
		t.Fatalf("season markers = %d, want 1", len(seasons))
	}
	if seasons[0].EndMs != to {
		t.Errorf("open band closed at %d, want range edge %d", seasons[0].EndMs, to)
	}
}

func TestGenerateMarkersValidation(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))
	ctx := context.Background()

	_, err := svc.GenerateMarkers(ctx, GenerateRequest{
		CalendarID: "cal-1", FromMs: 0, ToMs: dayMs, Scale: "fortnight",
	})
	assertValidationError(t, err)

	_, err = svc.GenerateMarkers(ctx, GenerateRequest{
		CalendarID: "cal-1", FromMs: dayMs, ToMs: 0, Scale: ScaleDay,
	})
	assertValidationError(t, err)
}

func TestGenerateMarkersRangeTooWide(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	// A year of hourly ticks would blow the marker cap.
	_, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "cal-1",
		FromMs:     0,
		ToMs:       365 * dayMs,
		Scale:      ScaleHour,
	})
	assertValidationError(t, err)
}

func TestGenerateMarkersUnknownCalendar(t *testing.T) {
	svc := NewService(fixedCalendarService(sixtyDayCalendar()))

	_, err := svc.GenerateMarkers(context.Background(), GenerateRequest{
		CalendarID: "nope", FromMs: 0, ToMs: dayMs, Scale: ScaleDay,
	})
	if err == nil {
		t.Fatal("expected not-found error")
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok || appErr.Code != http.StatusNotFound {
		t.Errorf("error = %v, want 404 AppError", err)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok || appErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("error = %v, want 422 AppError", err)
	}
}
