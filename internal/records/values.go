package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text is a display string decoded from a JSON string, number or boolean.
// JSON null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return fmt.Errorf("expected text, got %s", kindOf(b))
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Empty reports whether t has no visible characters.
func (t Text) Empty() bool { return strings.TrimSpace(string(t)) == "" }

// Number is a JSON number that also accepts numeric strings.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	f, err := parseNumeric(b)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// String formats n without a trailing ".0".
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Year is a calendar year coerced from a JSON number or numeric string. The
// value is kept as decoded, so 2025.5 stays outside a window ending at 2025.
type Year float64

// UnmarshalJSON implements json.Unmarshaler.
func (y *Year) UnmarshalJSON(b []byte) error {
	f, err := parseNumeric(b)
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = Year(f)
	return nil
}

func (y Year) String() string { return strconv.FormatFloat(float64(y), 'f', -1, 64) }

// Within reports whether y lies in the inclusive range [from, to].
func (y Year) Within(from, to int) bool {
	return float64(y) >= float64(from) && float64(y) <= float64(to)
}

func parseNumeric(b []byte) (float64, error) {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return 0, err
		}
		raw = strings.TrimSpace(raw)
	} else if len(b) == 0 || b[0] == '{' || b[0] == '[' || raw == "null" || raw == "true" || raw == "false" {
		return 0, fmt.Errorf("%s is not a number", kindOf(b))
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return f, nil
}

func kindOf(b []byte) string {
	if len(b) == 0 {
		return "empty value"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	}
	return string(b)
}
