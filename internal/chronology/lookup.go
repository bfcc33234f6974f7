package chronology

// Lookup-table resolution for calendars whose day-to-date mapping cannot
// be computed arithmetically. The table is authoritative; when a queried
// date or offset is absent the resolver snaps to the nearest entry rather
// than interpolating a synthetic intermediate date. An empty or
// unresolvable table degrades to offset 0 / the zero date, never an error.

// Structural distance weights for forward nearest-match selection.
const (
	lookupYearWeight  = 365
	lookupMonthWeight = 30
)

// SentinelDate is the canonical zero date returned when a lookup cannot
// produce anything better.
func SentinelDate() CalendarDate {
	return CalendarDate{Year: 0, Month: MonthByIndex(0), Day: 0}
}

// ResolveOffset maps a date to its absolute day offset via the table.
// Exact matches return the entry's offset. Otherwise the structurally
// closest entry wins, by |Δyear|·365 + |Δmonth|·30 + |Δday| (the month
// term applies only when both sides are numeric), and its offset is
// returned verbatim. Ties keep the earliest entry.
func ResolveOffset(d CalendarDate, table []LookupEntry, rep *Report) int64 {
	if len(table) == 0 {
		rep.Errorf(WarnLookupEmpty, "lookup table is empty; returning offset 0 for year %d", d.Year)
		return 0
	}

	for _, e := range table {
		if e.Year == d.Year && e.Day == d.Day && e.Month.Equal(d.Month) {
			return e.Offset
		}
	}

	best := 0
	bestDist := int64(-1)
	for i, e := range table {
		dist := structuralDistance(d, e)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	rep.Warnf(WarnLookupMiss, "no exact lookup entry for year %d %s day %d; snapping to nearest entry (year %d, offset %d)",
		d.Year, d.Month.String(), d.Day, table[best].Year, table[best].Offset)
	return table[best].Offset
}

// structuralDistance is the weighted date distance used for forward
// nearest-match snapping.
func structuralDistance(d CalendarDate, e LookupEntry) int64 {
	dist := abs64(int64(d.Year-e.Year)) * lookupYearWeight
	if di, dok := d.Month.Index(); dok {
		if ei, eok := e.Month.Index(); eok {
			dist += abs64(int64(di-ei)) * lookupMonthWeight
		}
	}
	dist += abs64(int64(d.Day - e.Day))
	return dist
}

// ResolveDate maps an absolute day offset back to a date via the table,
// attaching timeOfDayMs when non-zero. Exact offset matches return the
// entry's date unchanged. Otherwise the bounding entries below and above
// the target are located and whichever is numerically closer by offset
// wins, its date returned as-is (snapping, not interpolation). A tie
// prefers the lower entry.
func ResolveDate(offset int64, cal *Calendar, timeOfDayMs int64, rep *Report) CalendarDate {
	table := cal.LookupTable
	if len(table) == 0 {
		rep.Errorf(WarnLookupEmpty, "lookup table of calendar %q is empty; returning zero date for offset %d", cal.Name, offset)
		return SentinelDate()
	}

	var below, above *LookupEntry
	for i := range table {
		e := &table[i]
		if e.Offset == offset {
			return entryDate(*e, cal, timeOfDayMs)
		}
		if e.Offset < offset {
			if below == nil || e.Offset > below.Offset {
				below = e
			}
		} else {
			if above == nil || e.Offset < above.Offset {
				above = e
			}
		}
	}

	var chosen *LookupEntry
	switch {
	case below != nil && above != nil:
		if offset-below.Offset <= above.Offset-offset {
			chosen = below
		} else {
			chosen = above
		}
	case below != nil:
		chosen = below
	case above != nil:
		chosen = above
	}
	if chosen == nil {
		rep.Errorf(WarnLookupEmpty, "no usable lookup entry for offset %d in calendar %q; returning zero date", offset, cal.Name)
		return SentinelDate()
	}

	rep.Warnf(WarnLookupMiss, "no exact lookup entry for offset %d in calendar %q; snapping to entry at offset %d",
		offset, cal.Name, chosen.Offset)
	return entryDate(*chosen, cal, timeOfDayMs)
}

// entryDate materializes a table entry as a CalendarDate.
func entryDate(e LookupEntry, cal *Calendar, timeOfDayMs int64) CalendarDate {
	d := CalendarDate{Year: e.Year, Month: e.Month, Day: e.Day}
	if timeOfDayMs > 0 {
		d.Time = FormatTimeOfDay(timeOfDayMs, cal)
	}
	return d
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
