package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Class tells the orchestrator how to react to a failed fetch.
type Class int

const (
	// Transient covers timeouts, connection resets and 429/5xx
	// responses. Worth retrying with backoff.
	Transient Class = iota

	// Permanent covers 404 and other 4xx responses. The orchestrator
	// treats these as "no further pages".
	Permanent

	// Blocked means the site answered with an anti-automation page
	// (CAPTCHA, Cloudflare challenge). Backoff escalates beyond the
	// normal ceiling before giving up.
	Blocked
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	case Blocked:
		return "blocked"
	}
	return "unknown"
}

// Error is a classified fetch failure.
type Error struct {
	Class  Class
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, e.Class, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ClassOf extracts the class from err, defaulting to Transient for
// plain network errors so the retry loop gets a chance.
func ClassOf(err error) Class {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Class
	}
	return Transient
}

// classifyStatus maps an HTTP status code to an error class.
func classifyStatus(status int) Class {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return Transient
	case status == http.StatusForbidden:
		// Seek fronts with a challenge page on 403
		return Blocked
	case status >= 400:
		return Permanent
	}
	return Transient
}

