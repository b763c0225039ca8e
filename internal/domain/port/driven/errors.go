package driven

import (
	"errors"
	"fmt"
)

// ErrInvalidURL matches every ConfigError via errors.Is.
var ErrInvalidURL = errors.New("URL is invalid")

// ConfigError is returned when a GitLab client cannot be constructed because
// its base URL is unusable. No network activity has happened.
type ConfigError struct {
	URL string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("URL is invalid: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidURL) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidURL }

// TransportError is returned when a request failed before a response was
// received (DNS, connect, TLS).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to send request: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when GitLab answered with a status above 299.
// Body holds the raw response text.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// DecodeError is returned when a successful response did not match the
// expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to deserialize body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
