package bayesx

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// parseValue converts raw ledger text to a number. Blank or non-numeric text
// becomes NaN; the service decides what to do with it.
func parseValue(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// formatValue converts a raw JSON value from a suggestion to ledger text.
// Strings are taken verbatim, numbers keep their literal form, null becomes
// blank.
func formatValue(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))

	switch {
	case trimmed == "" || trimmed == "null":
		return "", nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}

		return s, nil
	case trimmed == "true" || trimmed == "false":
		return trimmed, nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}

		return n.String(), nil
	}
}

// isBlankBound reports whether a min or max value counts as unset.
func isBlankBound(v float64) bool {
	return v == 0 || math.IsNaN(v)
}

// copyValues returns an independent copy of an experiment's values.
func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}

	return out
}
