package chronology

// DayOfYear returns the 1-based position of a date within its year, the
// coordinate system intercalary days are addressed in.
func DayOfYear(d CalendarDate, cal *Calendar, rep *Report) int {
	return daysBeforeMonth(d.Month, cal, rep) + d.Day
}

// IntercalaryOn returns the intercalary day at the given 1-based position
// within the year, or nil.
func (c *Calendar) IntercalaryOn(dayOfYear int) *IntercalaryDay {
	for i := range c.IntercalaryDays {
		if c.IntercalaryDays[i].DayOfYear == dayOfYear {
			return &c.IntercalaryDays[i]
		}
	}
	return nil
}

// SeasonOn returns the season containing the given 1-based month and day,
// or nil. Wrap-around ranges (a winter spanning the year boundary) are
// handled by comparing packed month·100+day values.
func (c *Calendar) SeasonOn(month, day int) *Season {
	dateVal := month*100 + day
	for i := range c.Seasons {
		s := &c.Seasons[i]
		startVal := s.StartMonth*100 + s.StartDay
		endVal := s.EndMonth*100 + s.EndDay
		if startVal <= endVal {
			if dateVal >= startVal && dateVal <= endVal {
				return s
			}
			continue
		}
		if dateVal >= startVal || dateVal <= endVal {
			return s
		}
	}
	return nil
}

// HolidaysOn returns every holiday observed on the given month and day.
func (c *Calendar) HolidaysOn(month, day int) []Holiday {
	var out []Holiday
	for _, h := range c.Holidays {
		if h.Month == month && h.Day == day {
			out = append(out, h)
		}
	}
	return out
}
