package payload

import "fmt"

// HostedURLError is returned when hosted-URL mode is requested with a URL that
// a scanner could not open.
type HostedURLError struct {
	URL     string
	Message string
	Cause   error
}

func (e *HostedURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid hosted URL %q: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid hosted URL %q: %s", e.URL, e.Message)
}

func (e *HostedURLError) Unwrap() error {
	return e.Cause
}
