// Package calendars -- export.go provides JSON export of calendar
// definitions in Almanac's native format. Exports round-trip through the
// import path without loss.
package calendars

import "context"

// Export is the top-level JSON envelope for calendar export.
type Export struct {
	Format   string              `json:"format"`  // "almanac-calendar-v1"
	Version  int                 `json:"version"` // schema version (1)
	Calendar CreateCalendarInput `json:"calendar"`
}

// Export builds the portable form of a stored calendar. IDs and timestamps
// are deliberately omitted; an import creates a fresh calendar.
func (s *service) Export(ctx context.Context, id string) (*Export, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Export{
		Format:  exportFormatTag,
		Version: 1,
		Calendar: CreateCalendarInput{
			Name:             def.Name,
			Description:      def.Description,
			DaysPerYear:      def.DaysPerYear,
			ReferenceDate:    def.ReferenceDate,
			EpochDate:        def.EpochDate,
			LookupDriven:     def.LookupDriven,
			LookupEntries:    def.LookupEntries,
			Months:           def.Months,
			LeapRules:        def.LeapRules,
			IntercalaryDays:  def.IntercalaryDays,
			Seasons:          def.Seasons,
			Holidays:         def.Holidays,
			HoursPerDay:      def.HoursPerDay,
			MinutesPerHour:   def.MinutesPerHour,
			SecondsPerMinute: def.SecondsPerMinute,
		},
	}, nil
}
