// Package filter holds the small text predicates shared by the
// extractor, the orchestrator and the listing query endpoint.
package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ageRegex matches the site's relative posting grammar: a number
// followed by m (minutes), h (hours) or d (days), as in "Posted 2d ago".
var ageRegex = regexp.MustCompile(`(\d+)\s*([mhd])`)

// ParseAge converts "Posted 2d ago" / "5h ago" / "30m" into a duration.
// Returns false when the string has no recognizable age in it.
func ParseAge(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "posted", ""))
	match := ageRegex.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, false
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	switch match[2] {
	case "m":
		return time.Duration(value) * time.Minute, true
	case "h":
		return time.Duration(value) * time.Hour, true
	default: // "d"
		return time.Duration(value) * 24 * time.Hour, true
	}
}

// WithinLimit reports whether a posting age string falls inside the
// limit ("1d", "12h", ...). An empty limit always passes. A posting
// time we cannot parse also passes: the listing feed is best-effort
// dated and a missing date must not cut a run short.
func WithinLimit(postedText, limit string) bool {
	if limit == "" {
		return true
	}
	limitAge, ok := ParseAge(limit)
	if !ok {
		return true
	}
	jobAge, ok := ParseAge(postedText)
	if !ok {
		return true
	}
	return jobAge < limitAge
}
