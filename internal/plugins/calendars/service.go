package calendars

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/gioh-mkv/almanac/internal/apperror"
	"github.com/gioh-mkv/almanac/internal/chronology"
	"github.com/gioh-mkv/almanac/internal/sanitize"
)

// generateID creates a random UUID v4 string.
func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// Service defines business logic for the calendars plugin.
type Service interface {
	// Calendar CRUD.
	CreateCalendar(ctx context.Context, input CreateCalendarInput) (*Definition, error)
	GetCalendar(ctx context.Context, id string) (*Definition, error)
	ListCalendars(ctx context.Context) ([]Definition, error)
	UpdateCalendar(ctx context.Context, id string, input UpdateCalendarInput) (*Definition, error)
	DeleteCalendar(ctx context.Context, id string) error

	// Sub-resource replacement (whole-set semantics, like the repository).
	ReplaceMonths(ctx context.Context, id string, months []MonthDef) (*Definition, error)
	ReplaceLeapRules(ctx context.Context, id string, rules []LeapRuleDef) (*Definition, error)
	ReplaceLookupEntries(ctx context.Context, id string, entries []LookupEntry) (*Definition, error)
	ReplaceIntercalaryDays(ctx context.Context, id string, days []IntercalaryDef) (*Definition, error)
	ReplaceSeasons(ctx context.Context, id string, seasons []SeasonDef) (*Definition, error)
	ReplaceHolidays(ctx context.Context, id string, holidays []HolidayDef) (*Definition, error)

	// Structural checks.
	ValidateCalendar(ctx context.Context, id string) (*ValidationResponse, error)

	// Conversions.
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error)
	DateToOffset(ctx context.Context, id string, date DateParam) (*OffsetResponse, error)
	OffsetToDate(ctx context.Context, id string, offset int64) (*DateResponse, error)
	DateToTimestamp(ctx context.Context, id string, date DateParam) (*TimestampResponse, error)
	TimestampToDate(ctx context.Context, id string, timestampMs int64) (*DateResponse, error)

	// Day detail: intercalary days, seasons, holidays.
	DayInfo(ctx context.Context, id string, date DateParam) (*DayInfoResponse, error)

	// Import/export.
	Import(ctx context.Context, data []byte) (*Definition, error)
	Export(ctx context.Context, id string) (*Export, error)
}

// service is the default Service implementation.
type service struct {
	repo  Repository
	cache *Cache
}

// NewService creates a Service backed by the given repository. The cache is
// optional; nil disables definition caching.
func NewService(repo Repository, cache *Cache) Service {
	return &service{repo: repo, cache: cache}
}

// CreateCalendar validates, sanitizes, and stores a new calendar with all
// its sub-resources. Calendar names are unique.
func (s *service) CreateCalendar(ctx context.Context, input CreateCalendarInput) (*Definition, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check existing calendar: %w", err)
	}
	if existing != nil {
		return nil, apperror.NewConflict(fmt.Sprintf("a calendar named %q already exists", input.Name))
	}

	def := definitionFromInput(generateID(), input)
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}
	if err := s.storeSubResources(ctx, def); err != nil {
		return nil, err
	}
	return s.GetCalendar(ctx, def.ID)
}

// GetCalendar returns a calendar with all sub-resources, from cache when
// possible.
func (s *service) GetCalendar(ctx context.Context, id string) (*Definition, error) {
	if def := s.cache.Get(ctx, id); def != nil {
		return def, nil
	}

	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	if def == nil {
		return nil, apperror.NewNotFound("calendar not found")
	}

	s.cache.Put(ctx, def)
	return def, nil
}

// ListCalendars returns every stored calendar without sub-resources.
func (s *service) ListCalendars(ctx context.Context) ([]Definition, error) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return defs, nil
}

// UpdateCalendar replaces a calendar's definition wholesale.
func (s *service) UpdateCalendar(ctx context.Context, id string, input UpdateCalendarInput) (*Definition, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	if current == nil {
		return nil, apperror.NewNotFound("calendar not found")
	}

	// Renaming onto another calendar's name is a conflict.
	if input.Name != current.Name {
		clash, err := s.repo.GetByName(ctx, input.Name)
		if err != nil {
			return nil, fmt.Errorf("check calendar name: %w", err)
		}
		if clash != nil {
			return nil, apperror.NewConflict(fmt.Sprintf("a calendar named %q already exists", input.Name))
		}
	}

	def := definitionFromInput(id, input)
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("update calendar: %w", err)
	}
	if err := s.storeSubResources(ctx, def); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	return s.GetCalendar(ctx, id)
}

// DeleteCalendar removes a calendar and all its data.
func (s *service) DeleteCalendar(ctx context.Context, id string) error {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get calendar: %w", err)
	}
	if def == nil {
		return apperror.NewNotFound("calendar not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// ValidateCalendar runs the chronology structural checks over a stored
// definition. Warnings never block anything; Valid is false only when a
// critical warning (broken epoch anchoring) is present.
func (s *service) ValidateCalendar(ctx context.Context, id string) (*ValidationResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	warnings := chronology.ValidateCalendar(def.Chronology())
	valid := true
	for _, w := range warnings {
		if w.Critical {
			valid = false
		}
	}
	return &ValidationResponse{Valid: valid, Warnings: warnings}, nil
}

// Convert re-expresses a date from one stored calendar in another.
func (s *service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error) {
	from, err := s.GetCalendar(ctx, req.FromCalendarID)
	if err != nil {
		return nil, err
	}
	to, err := s.GetCalendar(ctx, req.ToCalendarID)
	if err != nil {
		return nil, err
	}

	rep := &chronology.Report{}
	converted := chronology.Convert(req.Date.CalendarDate(), from.Chronology(), to.Chronology(), rep)
	return &ConvertResponse{
		Date:     dateParamFrom(converted),
		Warnings: rep.Warnings(),
	}, nil
}

// DateToOffset computes the signed absolute day offset of a date.
func (s *service) DateToOffset(ctx context.Context, id string, date DateParam) (*OffsetResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	rep := &chronology.Report{}
	offset := chronology.ToAbsoluteOffset(date.CalendarDate(), def.Chronology(), rep)
	return &OffsetResponse{DayOffset: offset, Warnings: rep.Warnings()}, nil
}

// OffsetToDate maps an absolute day offset back to a calendar date.
func (s *service) OffsetToDate(ctx context.Context, id string, offset int64) (*DateResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	cal := def.Chronology()
	rep := &chronology.Report{}
	date := chronology.FromAbsoluteOffset(offset, cal, 0, rep)
	return &DateResponse{
		Date:      dateParamFrom(date),
		Formatted: chronology.FormatDate(date, cal, chronology.PrecisionTime),
		Warnings:  rep.Warnings(),
	}, nil
}

// DateToTimestamp maps a calendar date onto the Unix millisecond timeline.
func (s *service) DateToTimestamp(ctx context.Context, id string, date DateParam) (*TimestampResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	cal := def.Chronology()
	rep := &chronology.Report{}
	abs := chronology.Absolute(date.CalendarDate(), cal, rep)
	_, source := chronology.EpochTimestamp(cal, nil)
	ts := chronology.ToTimestamp(abs, rep)
	return &TimestampResponse{
		TimestampMs: ts,
		EpochSource: source.String(),
		Warnings:    rep.Warnings(),
	}, nil
}

// TimestampToDate maps a Unix millisecond timestamp into the calendar.
func (s *service) TimestampToDate(ctx context.Context, id string, timestampMs int64) (*DateResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	cal := def.Chronology()
	rep := &chronology.Report{}
	date := chronology.FromTimestamp(timestampMs, cal, rep)
	return &DateResponse{
		Date:      dateParamFrom(date),
		Formatted: chronology.FormatDate(date, cal, chronology.PrecisionTime),
		Warnings:  rep.Warnings(),
	}, nil
}

// DayInfo describes a single date: its position within the year plus any
// intercalary day, season, and holidays on it.
func (s *service) DayInfo(ctx context.Context, id string, date DateParam) (*DayInfoResponse, error) {
	def, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}

	cal := def.Chronology()
	rep := &chronology.Report{}
	cd := date.CalendarDate()
	dayOfYear := chronology.DayOfYear(cd, cal, rep)

	resp := &DayInfoResponse{
		Date:      date,
		DayOfYear: dayOfYear,
		Warnings:  rep.Warnings(),
	}

	if ic := cal.IntercalaryOn(dayOfYear); ic != nil {
		info := IntercalaryDef{Name: ic.Name, DayOfYear: ic.DayOfYear}
		if ic.Description != "" {
			desc := ic.Description
			info.Description = &desc
		}
		resp.Intercalary = &info
	}

	monthIdx, ok := cd.Month.Resolve(cal)
	if ok {
		if season := cal.SeasonOn(monthIdx, cd.Day); season != nil {
			resp.Season = &SeasonDef{
				Name:       season.Name,
				StartMonth: season.StartMonth,
				StartDay:   season.StartDay,
				EndMonth:   season.EndMonth,
				EndDay:     season.EndDay,
				Color:      season.Color,
			}
		}
		for _, h := range cal.HolidaysOn(monthIdx, cd.Day) {
			resp.Holidays = append(resp.Holidays, HolidayDef{Name: h.Name, Month: h.Month, Day: h.Day})
		}
	}

	return resp, nil
}

// storeSubResources replaces every child table's rows for a definition.
func (s *service) storeSubResources(ctx context.Context, def *Definition) error {
	if err := s.repo.SetMonths(ctx, def.ID, def.Months); err != nil {
		return fmt.Errorf("set months: %w", err)
	}
	if err := s.repo.SetLeapRules(ctx, def.ID, def.LeapRules); err != nil {
		return fmt.Errorf("set leap rules: %w", err)
	}
	if err := s.repo.SetLookupEntries(ctx, def.ID, def.LookupEntries); err != nil {
		return fmt.Errorf("set lookup entries: %w", err)
	}
	if err := s.repo.SetIntercalaryDays(ctx, def.ID, def.IntercalaryDays); err != nil {
		return fmt.Errorf("set intercalary days: %w", err)
	}
	if err := s.repo.SetSeasons(ctx, def.ID, def.Seasons); err != nil {
		return fmt.Errorf("set seasons: %w", err)
	}
	if err := s.repo.SetHolidays(ctx, def.ID, def.Holidays); err != nil {
		return fmt.Errorf("set holidays: %w", err)
	}
	return nil
}

// validateInput checks and sanitizes a create/update payload in place.
func validateInput(input *CreateCalendarInput) error {
	input.Name = sanitize.Name(input.Name)
	if input.Name == "" {
		return apperror.NewValidation("calendar name is required")
	}
	if input.Description != nil {
		desc := sanitize.Description(*input.Description)
		input.Description = &desc
	}

	if input.DaysPerYear < 0 {
		return apperror.NewValidation("days_per_year cannot be negative")
	}

	if err := validateMonths(input.Months); err != nil {
		return err
	}
	if err := validateLeapRules(input.LeapRules); err != nil {
		return err
	}
	if err := validateIntercalaryDays(input.IntercalaryDays); err != nil {
		return err
	}
	validateSeasons(input.Seasons)
	if err := validateHolidays(input.Holidays); err != nil {
		return err
	}

	if input.HoursPerDay < 0 || input.MinutesPerHour < 0 || input.SecondsPerMinute < 0 {
		return apperror.NewValidation("sub-day units cannot be negative")
	}

	return nil
}

// validateMonths sanitizes month names and checks day counts in place.
func validateMonths(months []MonthDef) error {
	for i := range months {
		m := &months[i]
		m.Name = sanitize.Name(m.Name)
		if m.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("month %d: name is required", i+1))
		}
		if m.Days < 1 || m.Days > 1000 {
			return apperror.NewValidation(fmt.Sprintf("month %q: days must be between 1 and 1000", m.Name))
		}
	}
	return nil
}

func validateLeapRules(rules []LeapRuleDef) error {
	for i, rule := range rules {
		switch chronology.RuleKind(rule.Kind) {
		case chronology.RuleDivisible, chronology.RuleModulo, chronology.RuleCustom:
		default:
			return apperror.NewValidation(fmt.Sprintf("leap rule %d: unknown kind %q", i+1, rule.Kind))
		}
		if rule.Divisor < 0 || rule.DaysAdded < 0 {
			return apperror.NewValidation(fmt.Sprintf("leap rule %d: divisor and days_added cannot be negative", i+1))
		}
	}
	return nil
}

func validateIntercalaryDays(days []IntercalaryDef) error {
	for i := range days {
		d := &days[i]
		d.Name = sanitize.Name(d.Name)
		if d.DayOfYear < 1 {
			return apperror.NewValidation(fmt.Sprintf("intercalary day %q: day_of_year must be positive", d.Name))
		}
		if d.Description != nil {
			desc := sanitize.Description(*d.Description)
			d.Description = &desc
		}
	}
	return nil
}

func validateSeasons(seasons []SeasonDef) {
	for i := range seasons {
		seasons[i].Name = sanitize.Name(seasons[i].Name)
	}
}

func validateHolidays(holidays []HolidayDef) error {
	for i := range holidays {
		h := &holidays[i]
		h.Name = sanitize.Name(h.Name)
		if h.Month < 1 || h.Day < 1 {
			return apperror.NewValidation(fmt.Sprintf("holiday %q: month and day must be positive", h.Name))
		}
	}
	return nil
}

// definitionFromInput builds the stored form of a validated payload.
func definitionFromInput(id string, input CreateCalendarInput) *Definition {
	return &Definition{
		ID:               id,
		Name:             input.Name,
		Description:      input.Description,
		DaysPerYear:      input.DaysPerYear,
		ReferenceDate:    input.ReferenceDate,
		EpochDate:        input.EpochDate,
		LookupDriven:     input.LookupDriven,
		LookupEntries:    input.LookupEntries,
		Months:           input.Months,
		LeapRules:        input.LeapRules,
		IntercalaryDays:  input.IntercalaryDays,
		Seasons:          input.Seasons,
		Holidays:         input.Holidays,
		HoursPerDay:      input.HoursPerDay,
		MinutesPerHour:   input.MinutesPerHour,
		SecondsPerMinute: input.SecondsPerMinute,
	}
}
