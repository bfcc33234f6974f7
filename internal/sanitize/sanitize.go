// Package sanitize provides HTML sanitization for user-provided calendar
// content. Calendar definitions arrive from import files and API clients, so
// every name and description is treated as hostile until scrubbed here.
// Uses bluemonday.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are initialized once via sync.Once for thread-safe lazy
// initialization.
var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	policyOnce   sync.Once
)

func initPolicies() {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
	})
}

// Name scrubs a calendar, month, season, or holiday name down to plain text.
// All markup is stripped and surrounding whitespace trimmed.
//
// This MUST be called on every user-provided name before storing it in the
// database.
func Name(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// Description sanitizes a free-form description field. Safe formatting tags
// survive; script tags, event handlers, and javascript: URLs do not.
//
// This MUST be called on every user-provided description before storing it
// in the database.
func Description(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return ugcPolicy.Sanitize(input)
}
