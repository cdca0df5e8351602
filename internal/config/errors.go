package config

import "errors"

// Configuration errors. Validate returns these wrapped with the offending
// value, so callers can match them with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidAddr is returned when the listen address has no port.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidURL is returned when a remote base URL is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL: must be absolute http or https")

	// ErrUnsupportedLanguage is returned when the default language is not
	// among the configured languages.
	ErrUnsupportedLanguage = errors.New("default language is not in languages")
)
