package chronology

import (
	"fmt"
	"log/slog"
)

// Level classifies how badly a conversion had to degrade.
type Level int

const (
	// LevelWarning marks a recoverable degradation: a documented default
	// was assumed and the result is usable but possibly approximate.
	LevelWarning Level = iota

	// LevelError marks a sentinel fallback: the result is a canonical
	// zero value because nothing better could be derived.
	LevelError
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Warning codes emitted by this package. Stable identifiers so callers can
// branch on them without string matching messages.
const (
	WarnCustomLeapRule    = "leap_rule_custom_unsupported"
	WarnLeapRuleNoDays    = "leap_rule_adds_no_days"
	WarnMonthUnresolved   = "month_unresolved"
	WarnMonthOverflow     = "month_walk_overflow"
	WarnSyntheticMonths   = "synthetic_months_assumed"
	WarnLookupMiss        = "lookup_nearest_match"
	WarnLookupEmpty       = "lookup_table_empty"
	WarnEpochApproximate  = "epoch_approximated"
	WarnEpochMissing      = "epoch_missing"
	WarnEpochUnparseable  = "epoch_unparseable"
	WarnBadTimeOfDay      = "time_of_day_unparseable"
	WarnMissingName       = "calendar_name_missing"
	WarnMissingDaysPerYr  = "days_per_year_missing"
	WarnMissingMonths     = "months_missing"
	WarnMonthSumMismatch  = "month_sum_mismatch"
	WarnMissingReference  = "reference_date_missing"
)

// Warning is one structural or data-quality diagnostic. Conversions never
// fail on malformed domain data; they return something usable and record
// what was assumed here.
type Warning struct {
	Code    string `json:"code"`
	Level   Level  `json:"-"`
	Message string `json:"message"`

	// Critical flags warnings that undermine every downstream result
	// (currently only a missing or unparseable epoch anchor, which skews
	// all timestamp placement). Still non-blocking.
	Critical bool `json:"critical,omitempty"`
}

// LevelName is the JSON rendering of Level.
func (w Warning) LevelName() string { return w.Level.String() }

// Report collects the warnings emitted during one or more conversion
// calls. A nil *Report is valid everywhere and simply drops diagnostics,
// so hot paths that don't care can pass nil. Warnings are also mirrored to
// slog at debug level for ad-hoc troubleshooting; the collected slice is
// the contract, the log is not.
type Report struct {
	warnings []Warning
}

// Warnings returns everything collected so far.
func (r *Report) Warnings() []Warning {
	if r == nil {
		return nil
	}
	return r.warnings
}

// Has reports whether a warning with the given code was collected.
func (r *Report) Has(code string) bool {
	if r == nil {
		return false
	}
	for _, w := range r.warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Warnf records a LevelWarning diagnostic.
func (r *Report) Warnf(code, format string, args ...any) {
	r.add(Warning{Code: code, Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// Errorf records a LevelError diagnostic (sentinel fallback taken).
func (r *Report) Errorf(code, format string, args ...any) {
	r.add(Warning{Code: code, Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) add(w Warning) {
	if r == nil {
		return
	}
	r.warnings = append(r.warnings, w)
	slog.Debug("chronology diagnostic",
		slog.String("code", w.Code),
		slog.String("level", w.Level.String()),
		slog.String("message", w.Message),
	)
}
