package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShape matches every *ShapeError.
var ErrShape = errors.New("schema: invalid shape")

// ShapeError describes the first record of a collection that does not have
// the required shape. Index is -1 when the collection itself is at fault.
type ShapeError struct {
	Source  string
	Index   int
	Missing []string
	Reason  string
}

func (e *ShapeError) Error() string {
	where := e.Source
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", e.Source, e.Index)
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("Invalid JSON in %s: missing %s", where, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("Invalid JSON in %s: %s", where, e.Reason)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// Invalid builds a collection-level ShapeError.
func Invalid(source, format string, args ...any) *ShapeError {
	return &ShapeError{Source: source, Index: -1, Reason: fmt.Sprintf(format, args...)}
}
