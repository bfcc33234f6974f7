package chronology

import (
	"fmt"
	"strings"
	"time"
)

// Precision selects how much of a date FormatDate renders.
type Precision int

const (
	// PrecisionDay renders "day month-name year".
	PrecisionDay Precision = iota

	// PrecisionTime additionally appends the time component when present.
	PrecisionTime
)

// FormatDate renders a date as a human-readable string: day, resolved
// month name, year, optionally time, space-joined. Named month refs pass
// through; numeric refs resolve against the calendar's months. No locale
// handling.
func FormatDate(d CalendarDate, cal *Calendar, p Precision) string {
	monthName := ""
	if name, ok := d.Month.Name(); ok {
		monthName = name
	} else if idx, ok := d.Month.Index(); ok {
		monthName = cal.MonthName(idx)
	}

	parts := []string{fmt.Sprintf("%d", d.Day), monthName, fmt.Sprintf("%d", d.Year)}
	if p == PrecisionTime && d.Time != "" {
		parts = append(parts, d.Time)
	}
	return strings.Join(parts, " ")
}

// ValidateCalendar runs non-fatal structural checks over a calendar
// definition and returns everything worth telling the author. Nothing
// here blocks use of the calendar; even the critical epoch warning only
// flags degraded timestamp accuracy.
func ValidateCalendar(cal *Calendar) []Warning {
	var warnings []Warning

	if strings.TrimSpace(cal.Name) == "" {
		warnings = append(warnings, Warning{
			Code: WarnMissingName, Level: LevelWarning,
			Message: "calendar has no name",
		})
	}

	if cal.DaysPerYear <= 0 {
		warnings = append(warnings, Warning{
			Code: WarnMissingDaysPerYr, Level: LevelWarning,
			Message: fmt.Sprintf("daysPerYear is missing or invalid; %d will be assumed", DefaultDaysPerYear),
		})
	}

	if len(cal.Months) == 0 && !cal.LookupDriven {
		warnings = append(warnings, Warning{
			Code: WarnMissingMonths, Level: LevelWarning,
			Message: fmt.Sprintf("calendar defines no months; fixed %d-day months will be assumed", syntheticMonthDays),
		})
	}

	if sum := cal.MonthDaySum(); len(cal.Months) > 0 && cal.DaysPerYear > 0 && sum != cal.DaysPerYear {
		warnings = append(warnings, Warning{
			Code: WarnMonthSumMismatch, Level: LevelWarning,
			Message: fmt.Sprintf("month days sum to %d but daysPerYear is %d; intercalary days may account for the difference", sum, cal.DaysPerYear),
		})
	}

	if cal.ReferenceDate == nil {
		warnings = append(warnings, Warning{
			Code: WarnMissingReference, Level: LevelWarning,
			Message: "no reference date; year 0 will be treated as the local epoch",
		})
	}

	if cal.EpochDate == "" {
		warnings = append(warnings, Warning{
			Code: WarnEpochMissing, Level: LevelWarning, Critical: true,
			Message: "no Gregorian epoch date; all timestamp placement for this calendar will be approximate or wrong",
		})
	} else if !parseableEpoch(cal.EpochDate) {
		warnings = append(warnings, Warning{
			Code: WarnEpochUnparseable, Level: LevelWarning, Critical: true,
			Message: fmt.Sprintf("epoch date %q is not a valid ISO-8601 date", cal.EpochDate),
		})
	}

	for i, rule := range cal.LeapRules {
		if rule.Kind == RuleCustom {
			warnings = append(warnings, Warning{
				Code: WarnCustomLeapRule, Level: LevelWarning,
				Message: fmt.Sprintf("leap rule %d is a custom rule, which is not yet supported and will never match", i+1),
			})
		}
		if rule.Kind != RuleCustom && rule.DaysAdded == 0 {
			warnings = append(warnings, Warning{
				Code: WarnLeapRuleNoDays, Level: LevelWarning,
				Message: fmt.Sprintf("leap rule %d adds no days; it has no effect on year length", i+1),
			})
		}
	}

	if cal.LookupDriven && len(cal.LookupTable) == 0 {
		warnings = append(warnings, Warning{
			Code: WarnLookupEmpty, Level: LevelWarning,
			Message: "calendar is lookup-driven but its table is empty; every conversion will degrade to the zero date",
		})
	}

	return warnings
}

func parseableEpoch(s string) bool {
	for _, layout := range epochLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ValidateDate is a structural sanity check callers may run before
// conversion: the month must resolve and the day must fit within the
// resolved month. Conversion itself never calls this; it degrades instead.
func ValidateDate(d CalendarDate, cal *Calendar) bool {
	if d.Day < 1 {
		return false
	}
	if cal.LookupDriven || len(cal.Months) == 0 {
		// No month structure to check against; day positivity is all
		// that can be asserted.
		return true
	}
	idx, ok := d.Month.Resolve(cal)
	if !ok {
		return false
	}
	return d.Day <= cal.Months[idx-1].Days
}
