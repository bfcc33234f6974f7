package chronology

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MillisPerDay is the length of one real-world day, the unit the absolute
// axis is scaled by regardless of a calendar's own sub-day units.
const MillisPerDay int64 = 86_400_000

// EpochSource identifies which tier of the anchoring strategy produced a
// calendar's epoch timestamp. The tiers are an ordered fallback chain, not
// alternatives of equal quality: only EpochExplicit is fully accurate.
type EpochSource int

const (
	// EpochExplicit: the calendar's EpochDate parsed as a proleptic
	// Gregorian date. The only accurate path.
	EpochExplicit EpochSource = iota

	// EpochApproximate: no EpochDate; the reference year is projected onto
	// the Unix timeline as (year − 1970) × 365.25 days. Drift accumulates
	// with distance from 1970.
	EpochApproximate

	// EpochUnixDefault: neither EpochDate nor a reference date; the Unix
	// epoch itself is assumed and timeline positioning will be wrong.
	EpochUnixDefault
)

// String implements fmt.Stringer.
func (s EpochSource) String() string {
	switch s {
	case EpochExplicit:
		return "explicit"
	case EpochApproximate:
		return "approximate"
	default:
		return "unix-default"
	}
}

// epochLayouts are the accepted EpochDate formats, tried in order.
var epochLayouts = []string{"2006-01-02", time.RFC3339}

// EpochTimestamp resolves the real-world instant (Unix milliseconds)
// corresponding to the calendar's absolute day offset 0, and reports which
// tier of the fallback chain produced it.
func EpochTimestamp(cal *Calendar, rep *Report) (int64, EpochSource) {
	if cal.EpochDate != "" {
		for _, layout := range epochLayouts {
			if t, err := time.Parse(layout, cal.EpochDate); err == nil {
				return t.UnixMilli(), EpochExplicit
			}
		}
		rep.Warnf(WarnEpochUnparseable, "calendar %q epoch date %q is not a valid ISO-8601 date; falling back", cal.Name, cal.EpochDate)
	}

	if cal.ReferenceDate != nil {
		years := float64(cal.ReferenceDate.Year - 1970)
		ms := int64(math.Round(years * 365.25 * float64(MillisPerDay)))
		rep.Warnf(WarnEpochApproximate, "calendar %q has no epoch date; approximating from reference year %d; timestamps may be inaccurate",
			cal.Name, cal.ReferenceDate.Year)
		return ms, EpochApproximate
	}

	rep.Errorf(WarnEpochMissing, "calendar %q has neither an epoch date nor a reference date; assuming the Unix epoch; timeline positioning will be wrong", cal.Name)
	return 0, EpochUnixDefault
}

// ToTimestamp maps an absolute date onto the continuous millisecond
// timeline: epoch + dayOffset·86,400,000 + time-of-day.
func ToTimestamp(abs AbsoluteDate, rep *Report) int64 {
	epoch, _ := EpochTimestamp(abs.Calendar, rep)
	return epoch + abs.DayOffset*MillisPerDay + abs.TimeOfDayMs
}

// Timestamp is the date-level convenience over Absolute + ToTimestamp.
func Timestamp(d CalendarDate, cal *Calendar, rep *Report) int64 {
	return ToTimestamp(Absolute(d, cal, rep), rep)
}

// FromTimestamp maps a continuous millisecond timestamp back into the
// calendar. Flooring division keeps pre-epoch instants on the correct day.
func FromTimestamp(ms int64, cal *Calendar, rep *Report) CalendarDate {
	epoch, _ := EpochTimestamp(cal, rep)
	delta := ms - epoch
	dayOffset := floorDiv(delta, MillisPerDay)
	timeOfDay := delta - dayOffset*MillisPerDay
	return FromAbsoluteOffset(dayOffset, cal, timeOfDay, rep)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// DayMillis returns the length of the calendar's day in milliseconds under
// its own sub-day units. Note this is the unit for parsing and formatting
// time-of-day strings; offset-to-timestamp scaling always uses the
// real-world MillisPerDay.
func (c *Calendar) DayMillis() int64 {
	return int64(c.hoursPerDay()) * c.hourMillis()
}

func (c *Calendar) hourMillis() int64 {
	return int64(c.minutesPerHour()) * c.minuteMillis()
}

func (c *Calendar) minuteMillis() int64 {
	return int64(c.secondsPerMinute()) * 1000
}

// ParseTimeOfDay converts an "HH:MM" or "HH:MM:SS" string to milliseconds
// within the day using the calendar's sub-day units. Empty input is
// midnight; malformed input degrades to midnight with a warning.
func ParseTimeOfDay(s string, cal *Calendar, rep *Report) int64 {
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		rep.Warnf(WarnBadTimeOfDay, "time %q is not HH:MM or HH:MM:SS; assuming midnight", s)
		return 0
	}
	nums := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			rep.Warnf(WarnBadTimeOfDay, "time %q has a non-numeric component; assuming midnight", s)
			return 0
		}
		nums[i] = int64(v)
	}
	ms := nums[0]*cal.hourMillis() + nums[1]*cal.minuteMillis()
	if len(nums) == 3 {
		ms += nums[2] * 1000
	}
	return ms
}

// FormatTimeOfDay renders milliseconds within the day as "HH:MM" (or
// "HH:MM:SS" when a seconds component remains) under the calendar's units.
func FormatTimeOfDay(ms int64, cal *Calendar) string {
	hours := ms / cal.hourMillis()
	ms -= hours * cal.hourMillis()
	minutes := ms / cal.minuteMillis()
	ms -= minutes * cal.minuteMillis()
	seconds := ms / 1000

	if seconds > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
