package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

var (
	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("resource: fetch failed")
	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("resource: decode failed")
)

// FetchError reports a transport failure or a non-success status for a resource path.
// Status is zero when no response was received.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s (%d): %v", e.Path, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s (%d)", e.Path, e.Status)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetch, and fs.ErrNotExist for a 404.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch || (target == fs.ErrNotExist && e.Status == http.StatusNotFound)
}

// DecodeError reports a body that is not valid JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid JSON: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
