// Package calendars provides storage and an HTTP API for fictional calendar
// definitions: non-Gregorian month structures, leap-year rule chains,
// lookup-table calendars, intercalary days, seasons, holidays, and custom
// sub-day units. Conversion math lives in internal/chronology; this package
// owns persistence, caching, import/export, and the REST surface.
package calendars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gioh-mkv/almanac/internal/chronology"
)

// Definition is the stored form of one calendar. It is both the DB row
// aggregate and the native JSON representation served by the API.
type Definition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	DaysPerYear int `json:"days_per_year"`

	// ReferenceDate anchors year counting; see chronology.Calendar.
	ReferenceDate *DateParam `json:"reference_date,omitempty"`

	// EpochDate is the proleptic Gregorian date of absolute day 0
	// ("YYYY-MM-DD" or RFC 3339). Empty means timestamp placement degrades
	// to the approximation tiers.
	EpochDate string `json:"epoch_date,omitempty"`

	// LookupDriven calendars resolve dates purely through LookupEntries.
	LookupDriven  bool          `json:"lookup_driven"`
	LookupEntries []LookupEntry `json:"lookup_entries,omitempty"`

	Months          []MonthDef       `json:"months,omitempty"`
	LeapRules       []LeapRuleDef    `json:"leap_rules,omitempty"`
	IntercalaryDays []IntercalaryDef `json:"intercalary_days,omitempty"`
	Seasons         []SeasonDef      `json:"seasons,omitempty"`
	Holidays        []HolidayDef     `json:"holidays,omitempty"`

	// Sub-day units. Zero means the 24/60/60 defaults.
	HoursPerDay      int `json:"hours_per_day,omitempty"`
	MinutesPerHour   int `json:"minutes_per_hour,omitempty"`
	SecondsPerMinute int `json:"seconds_per_minute,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MonthDef is one named month with its day count.
type MonthDef struct {
	Name      string `json:"name" yaml:"name"`
	Days      int    `json:"days" yaml:"days"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// LeapRuleDef is one stored leap-year rule.
type LeapRuleDef struct {
	Kind                      string `json:"kind" yaml:"kind"` // "divisible", "modulo", "custom"
	Divisor                   int    `json:"divisor" yaml:"divisor"`
	ExceptionDivisor          int    `json:"exception_divisor,omitempty" yaml:"exception_divisor,omitempty"`
	ExceptionExceptionDivisor int    `json:"exception_exception_divisor,omitempty" yaml:"exception_exception_divisor,omitempty"`
	DaysAdded                 int    `json:"days_added" yaml:"days_added"`
	SortOrder                 int    `json:"sort_order" yaml:"sort_order"`
}

// LookupEntry is one recorded date-to-offset correspondence for
// lookup-driven calendars.
type LookupEntry struct {
	Year      int        `json:"year" yaml:"year"`
	Month     MonthParam `json:"month" yaml:"month"`
	Day       int        `json:"day" yaml:"day"`
	Offset    int64      `json:"offset" yaml:"offset"`
	SortOrder int        `json:"sort_order" yaml:"sort_order"`
}

// IntercalaryDef is a named day outside the month structure, addressed by
// its 1-based position within the year.
type IntercalaryDef struct {
	Name        string  `json:"name" yaml:"name"`
	DayOfYear   int     `json:"day_of_year" yaml:"day_of_year"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SeasonDef is a named month/day range. Wrap-around ranges are allowed.
type SeasonDef struct {
	Name       string `json:"name" yaml:"name"`
	StartMonth int    `json:"start_month" yaml:"start_month"`
	StartDay   int    `json:"start_day" yaml:"start_day"`
	EndMonth   int    `json:"end_month" yaml:"end_month"`
	EndDay     int    `json:"end_day" yaml:"end_day"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
}

// HolidayDef is a named recurring date.
type HolidayDef struct {
	Name  string `json:"name" yaml:"name"`
	Month int    `json:"month" yaml:"month"`
	Day   int    `json:"day" yaml:"day"`
}

// MonthParam is a month reference that client JSON may express as either a
// string (month name, e.g. "Hammer") or a number (1-based index). The raw
// form is preserved so round-trips don't silently rewrite definitions.
type MonthParam struct {
	name  string
	index int
	named bool
}

// MonthByName builds a named MonthParam.
func MonthByName(name string) MonthParam {
	return MonthParam{name: name, named: true}
}

// MonthByIndex builds a numeric MonthParam.
func MonthByIndex(idx int) MonthParam {
	return MonthParam{index: idx}
}

// IsNamed reports whether the param carries a name rather than an index.
func (m MonthParam) IsNamed() bool { return m.named }

// String renders the raw form for storage and error messages.
func (m MonthParam) String() string {
	if m.named {
		return m.name
	}
	return fmt.Sprintf("%d", m.index)
}

// Ref converts to the chronology package's month reference.
func (m MonthParam) Ref() chronology.MonthRef {
	if m.named {
		return chronology.MonthByName(m.name)
	}
	return chronology.MonthByIndex(m.index)
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (m *MonthParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty month value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MonthByName(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("month must be a name or a 1-based index: %w", err)
	}
	*m = MonthByIndex(n)
	return nil
}

// MarshalJSON writes back the same shape that was stored.
func (m MonthParam) MarshalJSON() ([]byte, error) {
	if m.named {
		return json.Marshal(m.name)
	}
	return json.Marshal(m.index)
}

// monthParamFromStored rebuilds a MonthParam from its DB string column.
// Digits-only values are numeric indices; everything else is a name.
func monthParamFromStored(s string) MonthParam {
	if s == "" {
		return MonthParam{}
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return MonthByName(s)
		}
		n = n*10 + int(r-'0')
	}
	return MonthByIndex(n)
}

// DateParam is a calendar date as it appears in requests and stored
// definitions: year, month (name or index), day, optional "HH:MM[:SS]".
type DateParam struct {
	Year  int        `json:"year" yaml:"year"`
	Month MonthParam `json:"month" yaml:"month"`
	Day   int        `json:"day" yaml:"day"`
	Time  string     `json:"time,omitempty" yaml:"time,omitempty"`
}

// CalendarDate converts to the chronology representation.
func (d DateParam) CalendarDate() chronology.CalendarDate {
	return chronology.CalendarDate{
		Year:  d.Year,
		Month: d.Month.Ref(),
		Day:   d.Day,
		Time:  d.Time,
	}
}

// dateParamFrom converts back from the chronology representation.
func dateParamFrom(d chronology.CalendarDate) DateParam {
	p := DateParam{Year: d.Year, Day: d.Day, Time: d.Time}
	if name, ok := d.Month.Name(); ok {
		p.Month = MonthByName(name)
	} else if idx, ok := d.Month.Index(); ok {
		p.Month = MonthByIndex(idx)
	}
	return p
}

// Chronology builds the conversion-ready calendar from the stored
// definition. The stored sort orders must already be applied (repository
// queries ORDER BY sort_order).
func (d *Definition) Chronology() *chronology.Calendar {
	cal := &chronology.Calendar{
		Name:             d.Name,
		DaysPerYear:      d.DaysPerYear,
		EpochDate:        d.EpochDate,
		LookupDriven:     d.LookupDriven,
		HoursPerDay:      d.HoursPerDay,
		MinutesPerHour:   d.MinutesPerHour,
		SecondsPerMinute: d.SecondsPerMinute,
	}
	if d.ReferenceDate != nil {
		ref := d.ReferenceDate.CalendarDate()
		cal.ReferenceDate = &ref
	}
	for _, m := range d.Months {
		cal.Months = append(cal.Months, chronology.Month{Name: m.Name, Days: m.Days})
	}
	for _, r := range d.LeapRules {
		cal.LeapRules = append(cal.LeapRules, chronology.LeapRule{
			Kind:                      chronology.RuleKind(r.Kind),
			Divisor:                   r.Divisor,
			ExceptionDivisor:          r.ExceptionDivisor,
			ExceptionExceptionDivisor: r.ExceptionExceptionDivisor,
			DaysAdded:                 r.DaysAdded,
		})
	}
	for _, e := range d.LookupEntries {
		cal.LookupTable = append(cal.LookupTable, chronology.LookupEntry{
			Year:   e.Year,
			Month:  e.Month.Ref(),
			Day:    e.Day,
			Offset: e.Offset,
		})
	}
	for _, ic := range d.IntercalaryDays {
		day := chronology.IntercalaryDay{Name: ic.Name, DayOfYear: ic.DayOfYear}
		if ic.Description != nil {
			day.Description = *ic.Description
		}
		cal.IntercalaryDays = append(cal.IntercalaryDays, day)
	}
	for _, s := range d.Seasons {
		cal.Seasons = append(cal.Seasons, chronology.Season{
			Name:       s.Name,
			StartMonth: s.StartMonth,
			StartDay:   s.StartDay,
			EndMonth:   s.EndMonth,
			EndDay:     s.EndDay,
			Color:      s.Color,
		})
	}
	for _, h := range d.Holidays {
		cal.Holidays = append(cal.Holidays, chronology.Holiday{Name: h.Name, Month: h.Month, Day: h.Day})
	}
	return cal
}

// --- Request DTOs ---

// CreateCalendarInput is the validated input for creating a calendar.
type CreateCalendarInput struct {
	Name             string           `json:"name" yaml:"name"`
	Description      *string          `json:"description,omitempty" yaml:"description,omitempty"`
	DaysPerYear      int              `json:"days_per_year" yaml:"days_per_year"`
	ReferenceDate    *DateParam       `json:"reference_date,omitempty" yaml:"reference_date,omitempty"`
	EpochDate        string           `json:"epoch_date,omitempty" yaml:"epoch_date,omitempty"`
	LookupDriven     bool             `json:"lookup_driven" yaml:"lookup_driven"`
	LookupEntries    []LookupEntry    `json:"lookup_entries,omitempty" yaml:"lookup_entries,omitempty"`
	Months           []MonthDef       `json:"months,omitempty" yaml:"months,omitempty"`
	LeapRules        []LeapRuleDef    `json:"leap_rules,omitempty" yaml:"leap_rules,omitempty"`
	IntercalaryDays  []IntercalaryDef `json:"intercalary_days,omitempty" yaml:"intercalary_days,omitempty"`
	Seasons          []SeasonDef      `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Holidays         []HolidayDef     `json:"holidays,omitempty" yaml:"holidays,omitempty"`
	HoursPerDay      int              `json:"hours_per_day,omitempty" yaml:"hours_per_day,omitempty"`
	MinutesPerHour   int              `json:"minutes_per_hour,omitempty" yaml:"minutes_per_hour,omitempty"`
	SecondsPerMinute int              `json:"seconds_per_minute,omitempty" yaml:"seconds_per_minute,omitempty"`
}

// UpdateCalendarInput mirrors CreateCalendarInput for full replacement
// updates. Sub-resource slices always replace the stored set.
type UpdateCalendarInput = CreateCalendarInput

// ConvertRequest asks for a date to be re-expressed in another calendar.
type ConvertRequest struct {
	Date           DateParam `json:"date"`
	FromCalendarID string    `json:"from_calendar_id"`
	ToCalendarID   string    `json:"to_calendar_id"`
}

// ConvertResponse carries the converted date plus any degradation warnings.
type ConvertResponse struct {
	Date     DateParam            `json:"date"`
	Warnings []chronology.Warning `json:"warnings,omitempty"`
}

// OffsetResponse carries an absolute day offset computation.
type OffsetResponse struct {
	DayOffset int64                `json:"day_offset"`
	Warnings  []chronology.Warning `json:"warnings,omitempty"`
}

// DateResponse carries an offset-to-date or timestamp-to-date computation.
type DateResponse struct {
	Date      DateParam            `json:"date"`
	Formatted string               `json:"formatted"`
	Warnings  []chronology.Warning `json:"warnings,omitempty"`
}

// TimestampResponse carries a date-to-timestamp computation. EpochSource
// tells the client which anchoring tier produced it.
type TimestampResponse struct {
	TimestampMs int64                `json:"timestamp_ms"`
	EpochSource string               `json:"epoch_source"`
	Warnings    []chronology.Warning `json:"warnings,omitempty"`
}

// ValidationResponse carries the structural check results for a definition.
type ValidationResponse struct {
	Valid    bool                 `json:"valid"`
	Warnings []chronology.Warning `json:"warnings,omitempty"`
}

// DayInfoResponse describes one day: intercalary status, season, holidays.
type DayInfoResponse struct {
	Date        DateParam            `json:"date"`
	DayOfYear   int                  `json:"day_of_year"`
	Intercalary *IntercalaryDef      `json:"intercalary,omitempty"`
	Season      *SeasonDef           `json:"season,omitempty"`
	Holidays    []HolidayDef         `json:"holidays,omitempty"`
	Warnings    []chronology.Warning `json:"warnings,omitempty"`
}
