package calendars

import (
	"context"
	"database/sql"
)

// Repository defines persistence operations for calendar definitions.
type Repository interface {
	// Calendar CRUD.
	Create(ctx context.Context, def *Definition) error
	GetByID(ctx context.Context, id string) (*Definition, error)
	GetByName(ctx context.Context, name string) (*Definition, error)
	List(ctx context.Context) ([]Definition, error)
	Update(ctx context.Context, def *Definition) error
	Delete(ctx context.Context, id string) error

	// Sub-resources (replace all).
	SetMonths(ctx context.Context, calendarID string, months []MonthDef) error
	SetLeapRules(ctx context.Context, calendarID string, rules []LeapRuleDef) error
	SetLookupEntries(ctx context.Context, calendarID string, entries []LookupEntry) error
	SetIntercalaryDays(ctx context.Context, calendarID string, days []IntercalaryDef) error
	SetSeasons(ctx context.Context, calendarID string, seasons []SeasonDef) error
	SetHolidays(ctx context.Context, calendarID string, holidays []HolidayDef) error
}

// repo is the MariaDB implementation of Repository.
type repo struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed calendar repository.
func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

// calendarCols is the column list for calendar queries.
const calendarCols = `id, name, description, days_per_year,
        ref_year, ref_month, ref_day, ref_time, has_reference,
        epoch_date, lookup_driven,
        hours_per_day, minutes_per_hour, seconds_per_minute,
        created_at, updated_at`

// scanCalendar reads a row into a Definition struct (without sub-resources).
func scanCalendar(scanner interface{ Scan(...any) error }) (*Definition, error) {
	def := &Definition{}
	var (
		refYear, refDay int
		refMonth        string
		refTime         string
		hasReference    bool
	)
	err := scanner.Scan(&def.ID, &def.Name, &def.Description, &def.DaysPerYear,
		&refYear, &refMonth, &refDay, &refTime, &hasReference,
		&def.EpochDate, &def.LookupDriven,
		&def.HoursPerDay, &def.MinutesPerHour, &def.SecondsPerMinute,
		&def.CreatedAt, &def.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if hasReference {
		def.ReferenceDate = &DateParam{
			Year:  refYear,
			Month: monthParamFromStored(refMonth),
			Day:   refDay,
			Time:  refTime,
		}
	}
	return def, nil
}

// referenceColumns flattens the optional reference date for storage.
func referenceColumns(def *Definition) (year int, month string, day int, tm string, has bool) {
	if def.ReferenceDate == nil {
		return 0, "", 0, "", false
	}
	r := def.ReferenceDate
	return r.Year, r.Month.String(), r.Day, r.Time, true
}

// Create inserts a new calendar.
func (r *repo) Create(ctx context.Context, def *Definition) error {
	refYear, refMonth, refDay, refTime, hasRef := referenceColumns(def)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calendars (id, name, description, days_per_year,
		        ref_year, ref_month, ref_day, ref_time, has_reference,
		        epoch_date, lookup_driven,
		        hours_per_day, minutes_per_hour, seconds_per_minute)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.Name, def.Description, def.DaysPerYear,
		refYear, refMonth, refDay, refTime, hasRef,
		def.EpochDate, def.LookupDriven,
		def.HoursPerDay, def.MinutesPerHour, def.SecondsPerMinute,
	)
	return err
}

// GetByID returns a calendar by ID with all sub-resources loaded.
func (r *repo) GetByID(ctx context.Context, id string) (*Definition, error) {
	def, err := scanCalendar(r.db.QueryRowContext(ctx,
		`SELECT `+calendarCols+` FROM calendars WHERE id = ?`, id))
	if def == nil || err != nil {
		return def, err
	}
	return r.loadSubResources(ctx, def)
}

// GetByName returns a calendar by its unique name with sub-resources loaded.
func (r *repo) GetByName(ctx context.Context, name string) (*Definition, error) {
	def, err := scanCalendar(r.db.QueryRowContext(ctx,
		`SELECT `+calendarCols+` FROM calendars WHERE name = ?`, name))
	if def == nil || err != nil {
		return def, err
	}
	return r.loadSubResources(ctx, def)
}

// List returns all calendars without sub-resources, ordered by name.
func (r *repo) List(ctx context.Context) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+calendarCols+` FROM calendars ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// Update modifies an existing calendar's top-level fields.
func (r *repo) Update(ctx context.Context, def *Definition) error {
	refYear, refMonth, refDay, refTime, hasRef := referenceColumns(def)
	_, err := r.db.ExecContext(ctx,
		`UPDATE calendars SET name = ?, description = ?, days_per_year = ?,
		        ref_year = ?, ref_month = ?, ref_day = ?, ref_time = ?, has_reference = ?,
		        epoch_date = ?, lookup_driven = ?,
		        hours_per_day = ?, minutes_per_hour = ?, seconds_per_minute = ?
		 WHERE id = ?`,
		def.Name, def.Description, def.DaysPerYear,
		refYear, refMonth, refDay, refTime, hasRef,
		def.EpochDate, def.LookupDriven,
		def.HoursPerDay, def.MinutesPerHour, def.SecondsPerMinute,
		def.ID,
	)
	return err
}

// Delete removes a calendar and all child records (cascaded by FK).
func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM calendars WHERE id = ?`, id)
	return err
}

// loadSubResources populates every child slice on a definition.
func (r *repo) loadSubResources(ctx context.Context, def *Definition) (*Definition, error) {
	var err error
	if def.Months, err = r.getMonths(ctx, def.ID); err != nil {
		return nil, err
	}
	if def.LeapRules, err = r.getLeapRules(ctx, def.ID); err != nil {
		return nil, err
	}
	if def.LookupEntries, err = r.getLookupEntries(ctx, def.ID); err != nil {
		return nil, err
	}
	if def.IntercalaryDays, err = r.getIntercalaryDays(ctx, def.ID); err != nil {
		return nil, err
	}
	if def.Seasons, err = r.getSeasons(ctx, def.ID); err != nil {
		return nil, err
	}
	if def.Holidays, err = r.getHolidays(ctx, def.ID); err != nil {
		return nil, err
	}
	return def, nil
}

// replaceAll runs delete + bulk insert inside one transaction. Every Set*
// method funnels through here so partial writes can't leave a calendar with
// mixed old and new rows.
func (r *repo) replaceAll(ctx context.Context, deleteSQL, calendarID string, insert func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSQL, calendarID); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SetMonths replaces all months for a calendar.
func (r *repo) SetMonths(ctx context.Context, calendarID string, months []MonthDef) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_months WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for i, m := range months {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_months (calendar_id, name, days, sort_order)
					 VALUES (?, ?, ?, ?)`,
					calendarID, m.Name, m.Days, i,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getMonths(ctx context.Context, calendarID string) ([]MonthDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, days, sort_order FROM calendar_months
		 WHERE calendar_id = ? ORDER BY sort_order`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []MonthDef
	for rows.Next() {
		var m MonthDef
		if err := rows.Scan(&m.Name, &m.Days, &m.SortOrder); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// SetLeapRules replaces all leap rules for a calendar.
func (r *repo) SetLeapRules(ctx context.Context, calendarID string, rules []LeapRuleDef) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_leap_rules WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for i, rule := range rules {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_leap_rules
					        (calendar_id, kind, divisor, exception_divisor, exception_exception_divisor, days_added, sort_order)
					 VALUES (?, ?, ?, ?, ?, ?, ?)`,
					calendarID, rule.Kind, rule.Divisor, rule.ExceptionDivisor,
					rule.ExceptionExceptionDivisor, rule.DaysAdded, i,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getLeapRules(ctx context.Context, calendarID string) ([]LeapRuleDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, divisor, exception_divisor, exception_exception_divisor, days_added, sort_order
		 FROM calendar_leap_rules WHERE calendar_id = ? ORDER BY sort_order`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []LeapRuleDef
	for rows.Next() {
		var rule LeapRuleDef
		if err := rows.Scan(&rule.Kind, &rule.Divisor, &rule.ExceptionDivisor,
			&rule.ExceptionExceptionDivisor, &rule.DaysAdded, &rule.SortOrder); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SetLookupEntries replaces the lookup table for a calendar.
func (r *repo) SetLookupEntries(ctx context.Context, calendarID string, entries []LookupEntry) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_lookup_entries WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for i, e := range entries {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_lookup_entries (calendar_id, year, month, day, day_offset, sort_order)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					calendarID, e.Year, e.Month.String(), e.Day, e.Offset, i,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getLookupEntries(ctx context.Context, calendarID string) ([]LookupEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, day, day_offset, sort_order FROM calendar_lookup_entries
		 WHERE calendar_id = ? ORDER BY sort_order`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LookupEntry
	for rows.Next() {
		var (
			e        LookupEntry
			monthRaw string
		)
		if err := rows.Scan(&e.Year, &monthRaw, &e.Day, &e.Offset, &e.SortOrder); err != nil {
			return nil, err
		}
		e.Month = monthParamFromStored(monthRaw)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetIntercalaryDays replaces all intercalary days for a calendar.
func (r *repo) SetIntercalaryDays(ctx context.Context, calendarID string, days []IntercalaryDef) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_intercalary_days WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for _, d := range days {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_intercalary_days (calendar_id, name, day_of_year, description)
					 VALUES (?, ?, ?, ?)`,
					calendarID, d.Name, d.DayOfYear, d.Description,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getIntercalaryDays(ctx context.Context, calendarID string) ([]IntercalaryDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, day_of_year, description FROM calendar_intercalary_days
		 WHERE calendar_id = ? ORDER BY day_of_year`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []IntercalaryDef
	for rows.Next() {
		var d IntercalaryDef
		if err := rows.Scan(&d.Name, &d.DayOfYear, &d.Description); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SetSeasons replaces all seasons for a calendar.
func (r *repo) SetSeasons(ctx context.Context, calendarID string, seasons []SeasonDef) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_seasons WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for _, s := range seasons {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_seasons (calendar_id, name, start_month, start_day, end_month, end_day, color)
					 VALUES (?, ?, ?, ?, ?, ?, ?)`,
					calendarID, s.Name, s.StartMonth, s.StartDay, s.EndMonth, s.EndDay, s.Color,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getSeasons(ctx context.Context, calendarID string) ([]SeasonDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, start_month, start_day, end_month, end_day, color
		 FROM calendar_seasons WHERE calendar_id = ? ORDER BY start_month, start_day`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []SeasonDef
	for rows.Next() {
		var s SeasonDef
		if err := rows.Scan(&s.Name, &s.StartMonth, &s.StartDay, &s.EndMonth, &s.EndDay, &s.Color); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// SetHolidays replaces all holidays for a calendar.
func (r *repo) SetHolidays(ctx context.Context, calendarID string, holidays []HolidayDef) error {
	return r.replaceAll(ctx, `DELETE FROM calendar_holidays WHERE calendar_id = ?`, calendarID,
		func(tx *sql.Tx) error {
			for _, h := range holidays {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO calendar_holidays (calendar_id, name, month, day)
					 VALUES (?, ?, ?, ?)`,
					calendarID, h.Name, h.Month, h.Day,
				); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *repo) getHolidays(ctx context.Context, calendarID string) ([]HolidayDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, month, day FROM calendar_holidays
		 WHERE calendar_id = ? ORDER BY month, day`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []HolidayDef
	for rows.Next() {
		var h HolidayDef
		if err := rows.Scan(&h.Name, &h.Month, &h.Day); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
