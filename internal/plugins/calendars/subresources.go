// Package calendars -- subresources.go implements granular replacement of a
// calendar's child collections. Each operation swaps the whole set inside one
// transaction (repository semantics) so editors can save a single tab of the
// definition without resubmitting everything else.
package calendars

import (
	"context"
	"fmt"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// requireCalendar loads a calendar or returns a not-found apperror.
func (s *service) requireCalendar(ctx context.Context, id string) error {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get calendar: %w", err)
	}
	if def == nil {
		return apperror.NewNotFound("calendar not found")
	}
	return nil
}

// refresh invalidates the cache and re-reads the full definition.
func (s *service) refresh(ctx context.Context, id string) (*Definition, error) {
	s.cache.Invalidate(ctx, id)
	return s.GetCalendar(ctx, id)
}

// ReplaceMonths swaps the calendar's month sequence.
func (s *service) ReplaceMonths(ctx context.Context, id string, months []MonthDef) (*Definition, error) {
	if err := validateMonths(months); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetMonths(ctx, id, months); err != nil {
		return nil, fmt.Errorf("set months: %w", err)
	}
	return s.refresh(ctx, id)
}

// ReplaceLeapRules swaps the calendar's leap rule chain.
func (s *service) ReplaceLeapRules(ctx context.Context, id string, rules []LeapRuleDef) (*Definition, error) {
	if err := validateLeapRules(rules); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetLeapRules(ctx, id, rules); err != nil {
		return nil, fmt.Errorf("set leap rules: %w", err)
	}
	return s.refresh(ctx, id)
}

// ReplaceLookupEntries swaps the calendar's lookup table.
func (s *service) ReplaceLookupEntries(ctx context.Context, id string, entries []LookupEntry) (*Definition, error) {
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetLookupEntries(ctx, id, entries); err != nil {
		return nil, fmt.Errorf("set lookup entries: %w", err)
	}
	return s.refresh(ctx, id)
}

// ReplaceIntercalaryDays swaps the calendar's intercalary days.
func (s *service) ReplaceIntercalaryDays(ctx context.Context, id string, days []IntercalaryDef) (*Definition, error) {
	if err := validateIntercalaryDays(days); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetIntercalaryDays(ctx, id, days); err != nil {
		return nil, fmt.Errorf("set intercalary days: %w", err)
	}
	return s.refresh(ctx, id)
}

// ReplaceSeasons swaps the calendar's seasons.
func (s *service) ReplaceSeasons(ctx context.Context, id string, seasons []SeasonDef) (*Definition, error) {
	validateSeasons(seasons)
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetSeasons(ctx, id, seasons); err != nil {
		return nil, fmt.Errorf("set seasons: %w", err)
	}
	return s.refresh(ctx, id)
}

// ReplaceHolidays swaps the calendar's holidays.
func (s *service) ReplaceHolidays(ctx context.Context, id string, holidays []HolidayDef) (*Definition, error) {
	if err := validateHolidays(holidays); err != nil {
		return nil, err
	}
	if err := s.requireCalendar(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetHolidays(ctx, id, holidays); err != nil {
		return nil, fmt.Errorf("set holidays: %w", err)
	}
	return s.refresh(ctx, id)
}
