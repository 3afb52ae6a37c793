package service

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValidationErrors reports create/update failures per field.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// InvalidInputError signals an unparseable date in a metric
// recomputation. It aborts the cycle before any vendor or snapshot
// write, preserving prior cached values.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return e.Msg
}

// cutoffLayout is the only layout accepted for the on-time delivery
// cutoff. Request date fields are more lenient (see parseDateTime); the
// asymmetry is deliberate.
const cutoffLayout = "2006-01-02 15:04:05"

func parseCutoff(raw string) (time.Time, error) {
	t, err := time.Parse(cutoffLayout, raw)
	if err != nil {
		return time.Time{}, &InvalidInputError{
			Msg: fmt.Sprintf("Invalid delivery date format (YYYY-MM-DD HH:MM:SS expected): %s", raw),
		}
	}
	return t, nil
}

// parseDateTime parses request date fields, accepting RFC 3339 or the
// space-separated layout.
func parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(cutoffLayout, raw)
}
