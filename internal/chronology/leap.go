package chronology

// RuleKind discriminates the three supported leap-rule shapes.
type RuleKind string

const (
	// RuleDivisible is a Gregorian-style divisor chain: the year matches
	// when divisible by Divisor, unless also divisible by
	// ExceptionDivisor, unless in turn divisible by
	// ExceptionExceptionDivisor (which re-affirms the match). The 4/100/400
	// chain expressed generically.
	RuleDivisible RuleKind = "divisible"

	// RuleModulo matches when year % Divisor == 0.
	RuleModulo RuleKind = "modulo"

	// RuleCustom is a placeholder for user-scripted rules. Not yet
	// supported: it never matches and emits a warning when consulted.
	RuleCustom RuleKind = "custom"
)

// LeapRule is one leap-year rule. A calendar may carry several; each is
// evaluated independently per year and every matching rule's DaysAdded
// widens that year's total. Rules are additive, never mutually exclusive.
//
// The extra days widen the yearly total only; they are not attributed to a
// particular month. The inverse offset walk therefore absorbs them after
// the final configured month rather than inside a named month the way
// Gregorian February 29 works. Intentional for abstract fictional
// calendars; calendars mimicking Gregorian insertion inherit the same
// behavior.
type LeapRule struct {
	Kind                      RuleKind
	Divisor                   int
	ExceptionDivisor          int
	ExceptionExceptionDivisor int

	// DaysAdded is the number of extra days this rule contributes when it
	// matches. Zero contributes nothing (the validator warns about it).
	DaysAdded int
}

// Matches reports whether the rule applies to year. Go's % keeps the
// dividend's sign, so divisibility tests hold for negative years too.
// Year 0 never matches: the reference year contributes a plain-length
// year even though zero divides everything.
func (r LeapRule) Matches(year int, rep *Report) bool {
	if year == 0 && r.Kind != RuleCustom {
		return false
	}
	switch r.Kind {
	case RuleDivisible:
		if r.Divisor == 0 || year%r.Divisor != 0 {
			return false
		}
		if r.ExceptionDivisor != 0 && year%r.ExceptionDivisor == 0 {
			if r.ExceptionExceptionDivisor != 0 && year%r.ExceptionExceptionDivisor == 0 {
				return true
			}
			return false
		}
		return true
	case RuleModulo:
		return r.Divisor != 0 && year%r.Divisor == 0
	case RuleCustom:
		rep.Warnf(WarnCustomLeapRule, "custom leap rules are not yet supported; treating year %d as non-leap for this rule", year)
		return false
	default:
		return false
	}
}

// IsLeapYear reports whether any of the calendar's rules match the year.
// This only gates whether extra days exist at all; the day count itself is
// the per-rule sum computed by DaysInYear.
func IsLeapYear(year int, cal *Calendar, rep *Report) bool {
	for _, rule := range cal.LeapRules {
		if rule.Matches(year, rep) {
			return true
		}
	}
	return false
}

// DaysInYear returns the total day count of the given year: the nominal
// year length plus the DaysAdded of every rule matching that year.
func DaysInYear(year int, cal *Calendar, rep *Report) int {
	days := cal.baseDaysPerYear()
	for _, rule := range cal.LeapRules {
		if rule.Matches(year, rep) {
			days += rule.DaysAdded
		}
	}
	return days
}
