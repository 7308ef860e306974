package bandcamp

import "fmt"

// ParseError reports a required element that is missing or malformed.
type ParseError struct {
	URL   string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: missing %s", e.URL, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ActionError is a well-formed action response reporting failure. Code
// holds the platform's error code, Crumb a replacement crumb when the
// failure was an expired one.
type ActionError struct {
	URL     string
	Message string
	Code    string
	Crumb   string
}

func (e *ActionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = "action failed"
	}
	return fmt.Sprintf("%s: %s", e.URL, msg)
}

// InvalidCrumb reports whether the action failed because its crumb was
// stale.
func (e *ActionError) InvalidCrumb() bool {
	return e.Code == "invalid_crumb"
}
