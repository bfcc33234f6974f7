// Package chronology implements date conversion between user-defined
// calendar systems. A Calendar describes one system declaratively: its
// months, leap-year rules, intercalary days, sub-day time units, and how
// its origin anchors to the real-world timeline. From that description the
// package converts calendar dates to a signed absolute day offset and back,
// and maps offsets onto Unix-style millisecond timestamps for chronological
// ordering.
//
// Calendars whose structure cannot be expressed arithmetically carry an
// explicit lookup table instead (see lookup.go).
//
// Nothing in this package performs I/O or panics on bad domain data.
// Incomplete or inconsistent calendars degrade to documented defaults, and
// every degradation is recorded on the *Report passed into the call so
// callers can surface or assert on the diagnostics.
package chronology

import (
	"strconv"
	"strings"
)

// Defaults applied when a calendar omits the corresponding field.
const (
	DefaultDaysPerYear      = 365
	DefaultHoursPerDay      = 24
	DefaultMinutesPerHour   = 60
	DefaultSecondsPerMinute = 60

	// syntheticMonthDays is the month length assumed when a calendar
	// defines no months at all.
	syntheticMonthDays = 30
)

// Calendar is an immutable description of one calendar system. It is
// authored externally (editor, import layer) and supplied whole to every
// call; this package never mutates or caches it.
type Calendar struct {
	// Name identifies the calendar in diagnostics and formatting.
	Name string

	// DaysPerYear is the nominal year length before leap days. Zero means
	// unset; DefaultDaysPerYear is assumed and a validation warning is
	// raised. The month day-sum is validated against this but never
	// enforced, since intercalary days may account for the difference.
	DaysPerYear int

	// Months is the ordered month sequence. May be empty for lookup-table
	// calendars or calendars without month structure, in which case
	// conversion falls back to fixed 30-day synthetic months.
	Months []Month

	// ReferenceDate is the calendar-native date treated as the local
	// epoch: absolute day offset 0. Nil means the calendar has no declared
	// origin and year 0, month 1, day 1 is assumed.
	ReferenceDate *CalendarDate

	// EpochDate is an ISO-8601 Gregorian date string ("1492-01-01") stating
	// which real-world instant ReferenceDate corresponds to. Optional, but
	// its absence degrades timestamp accuracy (see EpochTimestamp).
	EpochDate string

	// LeapRules are evaluated independently per year; every matching
	// rule's DaysAdded widens that year. See leap.go.
	LeapRules []LeapRule

	// LookupDriven marks a calendar whose date↔offset mapping is given by
	// LookupTable rather than computed arithmetically.
	LookupDriven bool

	// LookupTable is the authoritative date↔offset mapping for
	// lookup-driven calendars.
	LookupTable []LookupEntry

	// IntercalaryDays are days outside the month structure, addressed by
	// their 1-based position within the year.
	IntercalaryDays []IntercalaryDay

	// Seasons and Holidays are annotations consumed by timeline rendering.
	// They do not participate in conversion.
	Seasons  []Season
	Holidays []Holiday

	// Custom sub-day units. Zero means the 24/60/60 defaults.
	HoursPerDay      int
	MinutesPerHour   int
	SecondsPerMinute int
}

// Month is a named period with a fixed day count.
type Month struct {
	Name string
	Days int
}

// IntercalaryDay is a day outside the normal month sequence.
type IntercalaryDay struct {
	Name        string
	DayOfYear   int // 1-based position within the year
	Description string
}

// Season is a named month/day range. Ranges may wrap around the year end
// (e.g. a winter spanning the last and first months).
type Season struct {
	Name       string
	StartMonth int
	StartDay   int
	EndMonth   int
	EndDay     int
	Color      string
}

// Holiday is a named observance recurring every year on a fixed month/day.
type Holiday struct {
	Name  string
	Month int
	Day   int
}

// LookupEntry maps one calendar date to its absolute day offset.
type LookupEntry struct {
	Year   int
	Month  MonthRef
	Day    int
	Offset int64
}

// CalendarDate is a date within one specific calendar. It is never
// meaningful across calendars without conversion.
type CalendarDate struct {
	Year  int // may be negative (before the reference year)
	Month MonthRef
	Day   int // 1-based
	Time  string // optional "HH:MM" or "HH:MM:SS" in the calendar's units
}

// AbsoluteDate is the ephemeral intermediate of one conversion: a signed
// day offset from the calendar's reference date plus milliseconds within
// the day. It exists only for the duration of a call and is never stored.
type AbsoluteDate struct {
	DayOffset   int64
	TimeOfDayMs int64
	Calendar    *Calendar
	Source      CalendarDate
}

// MonthRef addresses a month either by its 1-based index or by name.
// The distinction is resolved once at the calendar boundary instead of
// being re-discriminated throughout the arithmetic.
type MonthRef struct {
	name  string
	index int
}

// MonthByIndex returns a MonthRef addressing the i-th month (1-based).
func MonthByIndex(i int) MonthRef { return MonthRef{index: i} }

// MonthByName returns a MonthRef addressing a month by its name.
func MonthByName(name string) MonthRef { return MonthRef{name: name} }

// Index returns the numeric month index, if this ref is numeric.
func (m MonthRef) Index() (int, bool) { return m.index, m.name == "" }

// Name returns the month name, if this ref is named.
func (m MonthRef) Name() (string, bool) { return m.name, m.name != "" }

// IsZero reports whether the ref addresses nothing (the sentinel month 0).
func (m MonthRef) IsZero() bool { return m.name == "" && m.index == 0 }

// Equal reports whether two refs address the same month without consulting
// a calendar: indexes compare numerically, names case-insensitively.
// A named ref never equals a numeric one here; use Resolve for that.
func (m MonthRef) Equal(o MonthRef) bool {
	if m.name != "" || o.name != "" {
		return m.name != "" && o.name != "" && strings.EqualFold(m.name, o.name)
	}
	return m.index == o.index
}

// String renders the ref for diagnostics and formatting fallbacks.
func (m MonthRef) String() string {
	if m.name != "" {
		return m.name
	}
	return "month " + strconv.Itoa(m.index)
}

// Resolve returns the 1-based month index within cal. Named refs are
// matched case-insensitively against cal.Months. The second return is
// false when the ref cannot be resolved (unknown name, index out of
// range, or zero ref).
func (m MonthRef) Resolve(cal *Calendar) (int, bool) {
	if m.name != "" {
		for i, month := range cal.Months {
			if strings.EqualFold(month.Name, m.name) {
				return i + 1, true
			}
		}
		return 0, false
	}
	if m.index < 1 {
		return 0, false
	}
	if len(cal.Months) > 0 && m.index > len(cal.Months) {
		return 0, false
	}
	return m.index, true
}

// MonthName returns the display name of the 1-based month index, falling
// back to a positional label when the calendar defines no such month.
func (c *Calendar) MonthName(index int) string {
	if index >= 1 && index <= len(c.Months) {
		return c.Months[index-1].Name
	}
	return "Month " + strconv.Itoa(index)
}

// MonthDaySum returns the total configured month days, ignoring leap days.
func (c *Calendar) MonthDaySum() int {
	total := 0
	for _, m := range c.Months {
		total += m.Days
	}
	return total
}

// baseDaysPerYear is the nominal year length before leap additions.
func (c *Calendar) baseDaysPerYear() int {
	if c.DaysPerYear > 0 {
		return c.DaysPerYear
	}
	return DefaultDaysPerYear
}

// epochYear is the year of the declared reference date, 0 when absent.
func (c *Calendar) epochYear() int {
	if c.ReferenceDate != nil {
		return c.ReferenceDate.Year
	}
	return 0
}

// hoursPerDay, minutesPerHour, secondsPerMinute return the calendar's
// sub-day units with defaults applied.
func (c *Calendar) hoursPerDay() int {
	if c.HoursPerDay > 0 {
		return c.HoursPerDay
	}
	return DefaultHoursPerDay
}

func (c *Calendar) minutesPerHour() int {
	if c.MinutesPerHour > 0 {
		return c.MinutesPerHour
	}
	return DefaultMinutesPerHour
}

func (c *Calendar) secondsPerMinute() int {
	if c.SecondsPerMinute > 0 {
		return c.SecondsPerMinute
	}
	return DefaultSecondsPerMinute
}

