package chronology

// ToAbsoluteOffset converts a calendar date to its signed absolute day
// offset: the number of days between the calendar's reference date and the
// given date. Dates before the reference year yield negative offsets.
// Lookup-driven calendars delegate entirely to the lookup table; no
// arithmetic is attempted for them.
func ToAbsoluteOffset(d CalendarDate, cal *Calendar, rep *Report) int64 {
	if cal.LookupDriven {
		return ResolveOffset(d, cal.LookupTable, rep)
	}

	epochYear := cal.epochYear()
	var offset int64
	if d.Year >= epochYear {
		for y := epochYear; y < d.Year; y++ {
			offset += int64(DaysInYear(y, cal, rep))
		}
	} else {
		for y := d.Year; y < epochYear; y++ {
			offset -= int64(DaysInYear(y, cal, rep))
		}
	}

	offset += int64(daysBeforeMonth(d.Month, cal, rep))
	offset += int64(d.Day - 1)
	return offset
}

// daysBeforeMonth sums the lengths of the months preceding the referenced
// month. An unresolvable month contributes nothing (treated as the first
// month) with a warning. Calendars without months count fixed synthetic
// 30-day months for numeric refs.
func daysBeforeMonth(m MonthRef, cal *Calendar, rep *Report) int {
	if m.IsZero() {
		return 0
	}
	if len(cal.Months) == 0 {
		if idx, ok := m.Index(); ok && idx > 1 {
			rep.Warnf(WarnSyntheticMonths, "calendar %q has no months; assuming %d-day months", cal.Name, syntheticMonthDays)
			return (idx - 1) * syntheticMonthDays
		}
		if _, named := m.Name(); named {
			rep.Warnf(WarnMonthUnresolved, "calendar %q has no months to resolve %q against", cal.Name, m.String())
		}
		return 0
	}

	idx, ok := m.Resolve(cal)
	if !ok {
		rep.Warnf(WarnMonthUnresolved, "month %s not found in calendar %q; treating as first month", m.String(), cal.Name)
		return 0
	}
	days := 0
	for i := 0; i < idx-1 && i < len(cal.Months); i++ {
		days += cal.Months[i].Days
	}
	return days
}

// FromAbsoluteOffset converts a signed absolute day offset back to a
// calendar date, attaching timeOfDayMs as the date's time component when
// non-zero. The walk consumes whole years from the reference year (in
// either direction) until the offset lands within one year's span, then
// consumes months.
//
// If the in-year remainder exceeds every configured month (leap days are
// year-level, see LeapRule), the date clamps to the last month's last day
// with a warning instead of producing an invalid date.
func FromAbsoluteOffset(offset int64, cal *Calendar, timeOfDayMs int64, rep *Report) CalendarDate {
	if cal.LookupDriven {
		return ResolveDate(offset, cal, timeOfDayMs, rep)
	}

	year := cal.epochYear()
	remaining := offset
	if remaining >= 0 {
		for remaining >= int64(DaysInYear(year, cal, rep)) {
			remaining -= int64(DaysInYear(year, cal, rep))
			year++
		}
	} else {
		for remaining < 0 {
			year--
			remaining += int64(DaysInYear(year, cal, rep))
		}
	}

	monthIdx, day := monthDayFor(int(remaining), cal, rep)

	d := CalendarDate{Year: year, Month: MonthByIndex(monthIdx), Day: day}
	if timeOfDayMs > 0 {
		d.Time = FormatTimeOfDay(timeOfDayMs, cal)
	}
	return d
}

// monthDayFor turns a 0-based day-in-year remainder into a 1-based month
// index and day-of-month.
func monthDayFor(remaining int, cal *Calendar, rep *Report) (int, int) {
	if len(cal.Months) == 0 {
		rep.Warnf(WarnSyntheticMonths, "calendar %q has no months; assuming %d-day months", cal.Name, syntheticMonthDays)
		return remaining/syntheticMonthDays + 1, remaining%syntheticMonthDays + 1
	}
	for i, m := range cal.Months {
		if remaining < m.Days {
			return i + 1, remaining + 1
		}
		remaining -= m.Days
	}
	// Remainder beyond every month: leap days or a short month
	// configuration. Clamp rather than invent a month that doesn't exist.
	last := len(cal.Months)
	rep.Warnf(WarnMonthOverflow, "day %d overflows the months of calendar %q; clamping to %s %d",
		remaining+1, cal.Name, cal.Months[last-1].Name, cal.Months[last-1].Days)
	return last, cal.Months[last-1].Days
}

// Convert re-expresses a date from one calendar in another. The absolute
// day offset is the shared currency: the source date's offset is read back
// in the target calendar directly. Real-world anchoring is applied only
// when mapping to timestamps, never here.
func Convert(d CalendarDate, from, to *Calendar, rep *Report) CalendarDate {
	offset := ToAbsoluteOffset(d, from, rep)
	timeOfDay := ParseTimeOfDay(d.Time, from, rep)
	return FromAbsoluteOffset(offset, to, timeOfDay, rep)
}

// Absolute bundles a date's offset and time-of-day with its calendar, the
// intermediate form handed to ToTimestamp.
func Absolute(d CalendarDate, cal *Calendar, rep *Report) AbsoluteDate {
	return AbsoluteDate{
		DayOffset:   ToAbsoluteOffset(d, cal, rep),
		TimeOfDayMs: ParseTimeOfDay(d.Time, cal, rep),
		Calendar:    cal,
		Source:      d,
	}
}
