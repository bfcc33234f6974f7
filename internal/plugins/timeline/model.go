// Package timeline turns stored calendar definitions into marker sets for
// rendering horizontal timelines: tick marks at year, month, day, or hour
// granularity plus overlays for holidays, intercalary days, and season
// bands, all positioned on the real-world millisecond axis.
package timeline

import "github.com/gioh-mkv/almanac/internal/chronology"

// Scale selects the tick granularity of a generated marker set.
type Scale string

const (
	ScaleHour  Scale = "hour"
	ScaleDay   Scale = "day"
	ScaleMonth Scale = "month"
	ScaleYear  Scale = "year"
)

// Valid reports whether the scale is one of the supported values.
func (s Scale) Valid() bool {
	switch s {
	case ScaleHour, ScaleDay, ScaleMonth, ScaleYear:
		return true
	}
	return false
}

// MarkerKind classifies a marker for styling.
type MarkerKind string

const (
	KindTick        MarkerKind = "tick"
	KindHoliday     MarkerKind = "holiday"
	KindIntercalary MarkerKind = "intercalary"
	KindSeason      MarkerKind = "season"
)

// Marker is one labeled position on the timeline. Season markers carry an
// EndMs and span a band; everything else is a point.
type Marker struct {
	TimestampMs int64      `json:"timestamp_ms"`
	EndMs       int64      `json:"end_ms,omitempty"`
	Label       string     `json:"label"`
	Kind        MarkerKind `json:"kind"`
	Color       string     `json:"color,omitempty"`
}

// GenerateRequest asks for markers over a real-world time range.
type GenerateRequest struct {
	CalendarID string `json:"calendar_id"`
	FromMs     int64  `json:"from_ms"`
	ToMs       int64  `json:"to_ms"`
	Scale      Scale  `json:"scale"`
}

// GenerateResponse carries the marker set plus any conversion warnings
// accumulated while walking the range.
type GenerateResponse struct {
	Markers     []Marker             `json:"markers"`
	EpochSource string               `json:"epoch_source"`
	Warnings    []chronology.Warning `json:"warnings,omitempty"`
}
