package calendars

import (
	"context"
	"net/http"
	"testing"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// --- Mock Repository ---

// mockRepo implements Repository for testing. Each method delegates to an
// optional closure so tests only stub what they use.
type mockRepo struct {
	createFn         func(ctx context.Context, def *Definition) error
	getByIDFn        func(ctx context.Context, id string) (*Definition, error)
	getByNameFn      func(ctx context.Context, name string) (*Definition, error)
	listFn           func(ctx context.Context) ([]Definition, error)
	updateFn         func(ctx context.Context, def *Definition) error
	deleteFn         func(ctx context.Context, id string) error
	setMonthsFn      func(ctx context.Context, calendarID string, months []MonthDef) error
	setLeapRulesFn   func(ctx context.Context, calendarID string, rules []LeapRuleDef) error
	setLookupFn      func(ctx context.Context, calendarID string, entries []LookupEntry) error
	setIntercalaryFn func(ctx context.Context, calendarID string, days []IntercalaryDef) error
	setSeasonsFn     func(ctx context.Context, calendarID string, seasons []SeasonDef) error
	setHolidaysFn    func(ctx context.Context, calendarID string, holidays []HolidayDef) error
}

func (m *mockRepo) Create(ctx context.Context, def *Definition) error {
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Definition, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRepo) GetByName(ctx context.Context, name string) (*Definition, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockRepo) List(ctx context.Context) ([]Definition, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Update(ctx context.Context, def *Definition) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, def)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) SetMonths(ctx context.Context, calendarID string, months []MonthDef) error {
	if m.setMonthsFn != nil {
		return m.setMonthsFn(ctx, calendarID, months)
	}
	return nil
}

func (m *mockRepo) SetLeapRules(ctx context.Context, calendarID string, rules []LeapRuleDef) error {
	if m.setLeapRulesFn != nil {
		return m.setLeapRulesFn(ctx, calendarID, rules)
	}
	return nil
}

func (m *mockRepo) SetLookupEntries(ctx context.Context, calendarID string, entries []LookupEntry) error {
	if m.setLookupFn != nil {
		return m.setLookupFn(ctx, calendarID, entries)
	}
	return nil
}

func (m *mockRepo) SetIntercalaryDays(ctx context.Context, calendarID string, days []IntercalaryDef) error {
	if m.setIntercalaryFn != nil {
		return m.setIntercalaryFn(ctx, calendarID, days)
	}
	return nil
}

func (m *mockRepo) SetSeasons(ctx context.Context, calendarID string, seasons []SeasonDef) error {
	if m.setSeasonsFn != nil {
		return m.setSeasonsFn(ctx, calendarID, seasons)
	}
	return nil
}

func (m *mockRepo) SetHolidays(ctx context.Context, calendarID string, holidays []HolidayDef) error {
	if m.setHolidaysFn != nil {
		return m.setHolidaysFn(ctx, calendarID, holidays)
	}
	return nil
}

// memoryRepo returns a mockRepo backed by an in-memory map, enough for
// create/read flows without a database.
func memoryRepo() (*mockRepo, map[string]*Definition) {
	store := map[string]*Definition{}
	m := &mockRepo{
		createFn: func(ctx context.Context, def *Definition) error {
			copied := *def
			store[def.ID] = &copied
			return nil
		},
		getByIDFn: func(ctx context.Context, id string) (*Definition, error) {
			if def, ok := store[id]; ok {
				copied := *def
				return &copied, nil
			}
			return nil, nil
		},
		getByNameFn: func(ctx context.Context, name string) (*Definition, error) {
			for _, def := range store {
				if def.Name == name {
					copied := *def
					return &copied, nil
				}
			}
			return nil, nil
		},
		updateFn: func(ctx context.Context, def *Definition) error {
			copied := *def
			store[def.ID] = &copied
			return nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			delete(store, id)
			return nil
		},
	}
	// Sub-resources write back onto the stored aggregate so GetByID
	// returns them the way the real repository's eager load does.
	m.setMonthsFn = func(ctx context.Context, id string, months []MonthDef) error {
		if def, ok := store[id]; ok {
			def.Months = months
		}
		return nil
	}
	m.setLeapRulesFn = func(ctx context.Context, id string, rules []LeapRuleDef) error {
		if def, ok := store[id]; ok {
			def.LeapRules = rules
		}
		return nil
	}
	m.setLookupFn = func(ctx context.Context, id string, entries []LookupEntry) error {
		if def, ok := store[id]; ok {
			def.LookupEntries = entries
		}
		return nil
	}
	m.setIntercalaryFn = func(ctx context.Context, id string, days []IntercalaryDef) error {
		if def, ok := store[id]; ok {
			def.IntercalaryDays = days
		}
		return nil
	}
	m.setSeasonsFn = func(ctx context.Context, id string, seasons []SeasonDef) error {
		if def, ok := store[id]; ok {
			def.Seasons = seasons
		}
		return nil
	}
	m.setHolidaysFn = func(ctx context.Context, id string, holidays []HolidayDef) error {
		if def, ok := store[id]; ok {
			def.Holidays = holidays
		}
		return nil
	}
	return m, store
}

func assertAppErrorCode(t *testing.T, err error, wantCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", wantCode)
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Errorf("error code = %d, want %d (%v)", appErr.Code, wantCode, err)
	}
}

// --- Tests ---

func TestCreateCalendar(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	input := CreateCalendarInput{
		Name:        "Calendar of Harptos",
		DaysPerYear: 365,
		Months: []MonthDef{
			{Name: "Hammer", Days: 30},
			{Name: "Alturiak", Days: 30},
		},
		Holidays: []HolidayDef{{Name: "Midwinter", Month: 1, Day: 30}},
	}

	def, err := svc.CreateCalendar(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateCalendar() error = %v", err)
	}
	if def.ID == "" {
		t.Error("expected a generated ID")
	}
	if def.Name != "Calendar of Harptos" {
		t.Errorf("Name = %q, want %q", def.Name, "Calendar of Harptos")
	}
	if len(def.Months) != 2 {
		t.Errorf("Months count = %d, want 2", len(def.Months))
	}
	if len(def.Holidays) != 1 {
		t.Errorf("Holidays count = %d, want 1", len(def.Holidays))
	}
}

func TestCreateCalendarNameConflict(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	input := CreateCalendarInput{Name: "Harptos", DaysPerYear: 365}
	if _, err := svc.CreateCalendar(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateCalendar(context.Background(), input)
	assertAppErrorCode(t, err, http.StatusConflict)
}

func TestCreateCalendarValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateCalendarInput
	}{
		{
			name:  "empty name",
			input: CreateCalendarInput{Name: "   "},
		},
		{
			name: "month with zero days",
			input: CreateCalendarInput{
				Name:   "Broken",
				Months: []MonthDef{{Name: "Void", Days: 0}},
			},
		},
		{
			name: "unknown leap rule kind",
			input: CreateCalendarInput{
				Name:      "Broken",
				LeapRules: []LeapRuleDef{{Kind: "sometimes", Divisor: 4, DaysAdded: 1}},
			},
		},
		{
			name: "holiday without a month",
			input: CreateCalendarInput{
				Name:     "Broken",
				Holidays: []HolidayDef{{Name: "Nothing Day", Month: 0, Day: 1}},
			},
		},
		{
			name: "negative sub-day units",
			input: CreateCalendarInput{
				Name:        "Broken",
				HoursPerDay: -1,
			},
		},
	}

	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCalendar(context.Background(), tt.input)
			assertAppErrorCode(t, err, http.StatusUnprocessableEntity)
		})
	}
}

func TestCreateCalendarSanitizesNames(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	input := CreateCalendarInput{
		Name:   "<script>alert(1)</script>Harptos",
		Months: []MonthDef{{Name: "  Hammer  ", Days: 30}},
	}
	def, err := svc.CreateCalendar(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateCalendar() error = %v", err)
	}
	if def.Name != "Harptos" {
		t.Errorf("Name = %q, want script tag stripped", def.Name)
	}
	if def.Months[0].Name != "Hammer" {
		t.Errorf("month name = %q, want trimmed %q", def.Months[0].Name, "Hammer")
	}
}

func TestGetCalendarNotFound(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.GetCalendar(context.Background(), "no-such-id")
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestUpdateCalendar(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateCalendar(ctx, CreateCalendarInput{Name: "Harptos", DaysPerYear: 365})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateCalendar(ctx, created.ID, UpdateCalendarInput{
		Name:        "Harptos Revised",
		DaysPerYear: 360,
		Months:      []MonthDef{{Name: "Hammer", Days: 30}},
	})
	if err != nil {
		t.Fatalf("UpdateCalendar() error = %v", err)
	}
	if updated.Name != "Harptos Revised" {
		t.Errorf("Name = %q, want %q", updated.Name, "Harptos Revised")
	}
	if updated.DaysPerYear != 360 {
		t.Errorf("DaysPerYear = %d, want 360", updated.DaysPerYear)
	}
	if len(updated.Months) != 1 {
		t.Errorf("Months count = %d, want 1", len(updated.Months))
	}
}

func TestUpdateCalendarNotFound(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.UpdateCalendar(context.Background(), "no-such-id", UpdateCalendarInput{Name: "X"})
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestUpdateCalendarRenameConflict(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.CreateCalendar(ctx, CreateCalendarInput{Name: "First"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateCalendar(ctx, CreateCalendarInput{Name: "Second"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	_, err = svc.UpdateCalendar(ctx, second.ID, UpdateCalendarInput{Name: "First"})
	assertAppErrorCode(t, err, http.StatusConflict)
}

func TestDeleteCalendar(t *testing.T) {
	repo, store := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateCalendar(ctx, CreateCalendarInput{Name: "Doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteCalendar(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCalendar() error = %v", err)
	}
	if _, ok := store[created.ID]; ok {
		t.Error("calendar still in store after delete")
	}

	err = svc.DeleteCalendar(ctx, created.ID)
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestReplaceMonths(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:   "Editable",
		Months: []MonthDef{{Name: "Old", Days: 30}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	def, err := svc.ReplaceMonths(ctx, created.ID, []MonthDef{
		{Name: "New One", Days: 28},
		{Name: "New Two", Days: 32},
	})
	if err != nil {
		t.Fatalf("ReplaceMonths() error = %v", err)
	}
	if len(def.Months) != 2 || def.Months[0].Name != "New One" {
		t.Errorf("Months = %+v, want the replacement set", def.Months)
	}

	_, err = svc.ReplaceMonths(ctx, created.ID, []MonthDef{{Name: "Bad", Days: 0}})
	assertAppErrorCode(t, err, http.StatusUnprocessableEntity)

	_, err = svc.ReplaceMonths(ctx, "no-such-id", []MonthDef{{Name: "X", Days: 1}})
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestReplaceHolidays(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateCalendar(ctx, CreateCalendarInput{Name: "Festive"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	def, err := svc.ReplaceHolidays(ctx, created.ID, []HolidayDef{
		{Name: "Midsummer", Month: 7, Day: 1},
	})
	if err != nil {
		t.Fatalf("ReplaceHolidays() error = %v", err)
	}
	if len(def.Holidays) != 1 || def.Holidays[0].Name != "Midsummer" {
		t.Errorf("Holidays = %+v, want Midsummer", def.Holidays)
	}
}

func TestValidateCalendar(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	ref := DateParam{Year: 0, Month: MonthByIndex(1), Day: 1}
	clean, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:          "Clean",
		DaysPerYear:   60,
		ReferenceDate: &ref,
		EpochDate:     "1970-01-01",
		Months: []MonthDef{
			{Name: "One", Days: 30},
			{Name: "Two", Days: 30},
		},
	})
	if err != nil {
		t.Fatalf("create clean: %v", err)
	}

	resp, err := svc.ValidateCalendar(ctx, clean.ID)
	if err != nil {
		t.Fatalf("ValidateCalendar() error = %v", err)
	}
	if !resp.Valid {
		t.Errorf("Valid = false for a clean calendar; warnings: %v", resp.Warnings)
	}

	broken, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:      "Broken Epoch",
		EpochDate: "the time before memory",
	})
	if err != nil {
		t.Fatalf("create broken: %v", err)
	}

	resp, err = svc.ValidateCalendar(ctx, broken.ID)
	if err != nil {
		t.Fatalf("ValidateCalendar() error = %v", err)
	}
	if resp.Valid {
		t.Error("Valid = true for an unparseable epoch, want false")
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected warnings for a broken calendar")
	}
}

func TestConvertBetweenCalendars(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	from, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:        "Sixty A",
		DaysPerYear: 60,
		Months: []MonthDef{
			{Name: "Alpha", Days: 30},
			{Name: "Beta", Days: 30},
		},
	})
	if err != nil {
		t.Fatalf("create from: %v", err)
	}
	to, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:        "Sixty B",
		DaysPerYear: 60,
		Months: []MonthDef{
			{Name: "First", Days: 20},
			{Name: "Second", Days: 20},
			{Name: "Third", Days: 20},
		},
	})
	if err != nil {
		t.Fatalf("create to: %v", err)
	}

	// Year 1, month 2, day 1 of a 60-day calendar is absolute day 90.
	// In the target's 20-day months that is year 1, month 2, day 11.
	resp, err := svc.Convert(ctx, ConvertRequest{
		Date:           DateParam{Year: 1, Month: MonthByName("Beta"), Day: 1},
		FromCalendarID: from.ID,
		ToCalendarID:   to.ID,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if resp.Date.Year != 1 || resp.Date.Day != 11 {
		t.Errorf("converted to year %d day %d, want year 1 day 11", resp.Date.Year, resp.Date.Day)
	}
	if resp.Date.Month.String() != "2" {
		t.Errorf("converted month = %s, want index 2", resp.Date.Month.String())
	}
}

func TestConvertMissingCalendar(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Convert(context.Background(), ConvertRequest{
		Date:           DateParam{Year: 1, Month: MonthByIndex(1), Day: 1},
		FromCalendarID: "missing",
		ToCalendarID:   "also-missing",
	})
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestDateToOffsetRoundTrip(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	cal, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:        "Round Trip",
		DaysPerYear: 60,
		Months: []MonthDef{
			{Name: "One", Days: 30},
			{Name: "Two", Days: 30},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	date := DateParam{Year: 3, Month: MonthByIndex(2), Day: 14}
	off, err := svc.DateToOffset(ctx, cal.ID, date)
	if err != nil {
		t.Fatalf("DateToOffset() error = %v", err)
	}
	want := int64(3*60 + 30 + 13)
	if off.DayOffset != want {
		t.Errorf("DayOffset = %d, want %d", off.DayOffset, want)
	}

	back, err := svc.OffsetToDate(ctx, cal.ID, off.DayOffset)
	if err != nil {
		t.Fatalf("OffsetToDate() error = %v", err)
	}
	if back.Date.Year != 3 || back.Date.Day != 14 {
		t.Errorf("round trip gave year %d day %d, want year 3 day 14", back.Date.Year, back.Date.Day)
	}
	if back.Formatted == "" {
		t.Error("expected a formatted date string")
	}
}

func TestDateToTimestamp(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	ref := DateParam{Year: 0, Month: MonthByIndex(1), Day: 1}
	cal, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:          "Anchored",
		DaysPerYear:   60,
		ReferenceDate: &ref,
		EpochDate:     "1970-01-01",
		Months: []MonthDef{
			{Name: "One", Days: 30},
			{Name: "Two", Days: 30},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := svc.DateToTimestamp(ctx, cal.ID, DateParam{Year: 0, Month: MonthByIndex(1), Day: 2})
	if err != nil {
		t.Fatalf("DateToTimestamp() error = %v", err)
	}
	if resp.TimestampMs != 86_400_000 {
		t.Errorf("TimestampMs = %d, want 86400000", resp.TimestampMs)
	}
	if resp.EpochSource != "explicit" {
		t.Errorf("EpochSource = %q, want %q", resp.EpochSource, "explicit")
	}

	back, err := svc.TimestampToDate(ctx, cal.ID, resp.TimestampMs)
	if err != nil {
		t.Fatalf("TimestampToDate() error = %v", err)
	}
	if back.Date.Year != 0 || back.Date.Day != 2 {
		t.Errorf("round trip gave year %d day %d, want year 0 day 2", back.Date.Year, back.Date.Day)
	}
}

func TestDayInfo(t *testing.T) {
	repo, _ := memoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	festival := "The year's hinge."
	cal, err := svc.CreateCalendar(ctx, CreateCalendarInput{
		Name:        "Festive",
		DaysPerYear: 61,
		Months: []MonthDef{
			{Name: "One", Days: 30},
			{Name: "Two", Days: 30},
		},
		IntercalaryDays: []IntercalaryDef{
			{Name: "Festival", DayOfYear: 31, Description: &festival},
		},
		Seasons: []SeasonDef{
			{Name: "Highsun", StartMonth: 2, StartDay: 1, EndMonth: 2, EndDay: 30, Color: "#fc0"},
		},
		Holidays: []HolidayDef{
			{Name: "Feast of the Moon", Month: 2, Day: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	info, err := svc.DayInfo(ctx, cal.ID, DateParam{Year: 0, Month: MonthByName("Two"), Day: 1})
	if err != nil {
		t.Fatalf("DayInfo() error = %v", err)
	}
	if info.DayOfYear != 31 {
		t.Errorf("DayOfYear = %d, want 31", info.DayOfYear)
	}
	if info.Intercalary == nil || info.Intercalary.Name != "Festival" {
		t.Errorf("Intercalary = %+v, want Festival", info.Intercalary)
	}
	if info.Season == nil || info.Season.Name != "Highsun" {
		t.Errorf("Season = %+v, want Highsun", info.Season)
	}
	if len(info.Holidays) != 1 || info.Holidays[0].Name != "Feast of the Moon" {
		t.Errorf("Holidays = %+v, want Feast of the Moon", info.Holidays)
	}
}
