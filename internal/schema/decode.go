package schema

import (
	"encoding/json"
	"errors"
)

// Validator is implemented by typed records that carry invariants beyond key presence.
type Validator interface {
	Validate() error
}

// Decode converts structurally validated records into typed values. When *T
// implements Validator each element is checked in order and the first
// failure is returned as a *ShapeError tagged with source and index.
func Decode[T any](records []map[string]any, source string) ([]T, error) {
	out := make([]T, len(records))
	for i, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, &ShapeError{Source: source, Index: i, Reason: err.Error()}
		}
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, &ShapeError{Source: source, Index: i, Reason: decodeReason(err)}
		}
		if v, ok := any(&out[i]).(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, &ShapeError{Source: source, Index: i, Reason: err.Error()}
			}
		}
	}
	return out, nil
}

func decodeReason(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + ": unexpected " + typeErr.Value
	}
	return err.Error()
}
