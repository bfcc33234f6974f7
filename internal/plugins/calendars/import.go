// Package calendars -- import.go provides calendar import from three
// sources: Almanac native JSON, plain YAML definitions, and Markdown notes
// carrying the definition as YAML front matter (the format worldbuilding
// note vaults keep their calendars in).
package calendars

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// ImportFormat identifies which input format was detected.
type ImportFormat string

const (
	FormatAlmanac     ImportFormat = "almanac"
	FormatYAML        ImportFormat = "yaml"
	FormatFrontMatter ImportFormat = "front-matter"
	FormatUnknown     ImportFormat = "unknown"
)

// exportFormatTag marks Almanac's own export envelope.
const exportFormatTag = "almanac-calendar-v1"

// Import detects the payload format, parses it into a create input, and
// stores the calendar through the normal create path (same validation,
// sanitization, and uniqueness rules as the API).
func (s *service) Import(ctx context.Context, data []byte) (*Definition, error) {
	input, _, err := DetectAndParse(data)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}
	return s.CreateCalendar(ctx, *input)
}

// DetectAndParse auto-detects the format of an import payload and parses it
// into a CreateCalendarInput. Returns the detected format alongside.
func DetectAndParse(data []byte) (*CreateCalendarInput, ImportFormat, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, FormatUnknown, fmt.Errorf("empty import payload")
	}

	switch {
	case trimmed[0] == '{':
		input, err := parseNativeJSON(trimmed)
		return input, FormatAlmanac, err

	case bytes.HasPrefix(trimmed, []byte("---")):
		input, err := parseFrontMatter(trimmed)
		return input, FormatFrontMatter, err

	default:
		input, err := parseYAML(trimmed)
		return input, FormatYAML, err
	}
}

// parseNativeJSON parses Almanac's own export envelope, or a bare
// CreateCalendarInput-shaped JSON object.
func parseNativeJSON(data []byte) (*CreateCalendarInput, error) {
	// Peek at the envelope tag first.
	var envelope struct {
		Format   string          `json:"format"`
		Calendar json.RawMessage `json:"calendar"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	payload := data
	if envelope.Format != "" {
		if envelope.Format != exportFormatTag {
			return nil, fmt.Errorf("unsupported export format %q", envelope.Format)
		}
		if len(envelope.Calendar) == 0 {
			return nil, fmt.Errorf("export envelope has no calendar")
		}
		payload = envelope.Calendar
	}

	var input CreateCalendarInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return nil, fmt.Errorf("parse calendar JSON: %w", err)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("calendar JSON has no name")
	}
	return &input, nil
}

// parseYAML parses a bare YAML calendar definition.
func parseYAML(data []byte) (*CreateCalendarInput, error) {
	var input CreateCalendarInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("calendar YAML has no name")
	}
	return &input, nil
}

// parseFrontMatter extracts the YAML block between the leading "---" fence
// and the next "---" line, ignoring the Markdown body after it.
func parseFrontMatter(data []byte) (*CreateCalendarInput, error) {
	block, err := frontMatterBlock(data)
	if err != nil {
		return nil, err
	}
	return parseYAML(block)
}

// frontMatterBlock returns the bytes between the opening and closing "---"
// fences of a Markdown document.
func frontMatterBlock(data []byte) ([]byte, error) {
	// Skip the opening fence line.
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("front matter has no content")
	}
	rest := data[nl+1:]

	for _, fence := range [][]byte{[]byte("\n---\n"), []byte("\n---\r\n"), []byte("\n---")} {
		if idx := bytes.Index(rest, fence); idx >= 0 {
			return rest[:idx], nil
		}
	}
	return nil, fmt.Errorf("front matter is not closed with ---")
}

// UnmarshalYAML accepts either a scalar string or integer for a month
// reference, mirroring the JSON behavior.
func (m *MonthParam) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*m = MonthByIndex(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("month must be a name or a 1-based index")
	}
	*m = MonthByName(s)
	return nil
}

// MarshalYAML mirrors MarshalJSON for symmetry; exports are JSON but the
// type should round-trip regardless of codec.
func (m MonthParam) MarshalYAML() (interface{}, error) {
	if m.named {
		return m.name, nil
	}
	return m.index, nil
}
