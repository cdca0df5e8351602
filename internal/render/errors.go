package render

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplate matches every *TemplateError.
	ErrTemplate = errors.New("render: template failed")
	// ErrUnknownTemplate is reported by a strategy that does not know a name.
	ErrUnknownTemplate = errors.New("render: unknown template")
	// ErrNoOutput is reported when a template executed to markup with no content.
	ErrNoOutput = errors.New("render: template produced no output")
)

// TemplateError is returned once every rendering path for Name has failed.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }
