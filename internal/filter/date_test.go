package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAge(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
		ok   bool
	}{
		{"posted days", "Posted 2d ago", 48 * time.Hour, true},
		{"hours", "5h ago", 5 * time.Hour, true},
		{"minutes", "30m", 30 * time.Minute, true},
		{"spaced unit", "Posted 12 h ago", 12 * time.Hour, true},
		{"uppercase", "POSTED 3D AGO", 72 * time.Hour, true},
		{"empty", "", 0, false},
		{"no age", "Featured", 0, false},
		{"absolute date", "12 Jan 2026", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAge(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWithinLimit(t *testing.T) {
	tests := []struct {
		name   string
		posted string
		limit  string
		want   bool
	}{
		{"inside", "Posted 2h ago", "1d", true},
		{"outside", "Posted 5d ago", "1d", false},
		{"exactly at limit is outside", "1d ago", "1d", false},
		{"no limit passes", "Posted 30d ago", "", true},
		{"unparseable posting passes", "Featured", "1d", true},
		{"unparseable limit passes", "2d ago", "recent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinLimit(tt.posted, tt.limit))
		})
	}
}
