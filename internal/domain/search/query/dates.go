package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/gamesearch/internal/domain"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z?$`)

const (
	layoutUTC   = "2006-01-02T15:04:05Z"
	layoutLocal = "2006-01-02T15:04:05"
)

// IsDateString reports whether s has the YYYY-MM-DDTHH:MM:SS[Z] shape.
func IsDateString(s string) bool { return datePattern.MatchString(s) }

// ParseDate converts a YYYY-MM-DDTHH:MM:SS[Z] string into a UTC instant.
// Strings without the trailing Z are read as UTC.
func ParseDate(s string) (time.Time, error) {
	layout := layoutLocal
	if strings.HasSuffix(s, "Z") {
		layout = layoutUTC
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, err //nolint:wrapcheck // caller attaches the JSON path
	}
	return t.UTC(), nil
}

// NormalizeDates walks v and replaces every date-shaped string leaf with a
// time.Time. Non-matching strings are left untouched. The input is not mutated.
func NormalizeDates(v any) (any, error) {
	return normalizeDates(v, "$")
}

func normalizeDates(v any, path string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			n, err := normalizeDates(child, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			n, err := normalizeDates(child, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case string:
		if !IsDateString(t) {
			return t, nil
		}
		ts, err := ParseDate(t)
		if err != nil {
			return nil, domain.NewValidationError(path, "invalid date "+t)
		}
		return ts, nil
	default:
		return v, nil
	}
}
