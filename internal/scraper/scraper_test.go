package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobValid(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"complete", Job{ListingID: "1", URL: "https://www.seek.com.au/job/1"}, true},
		{"missing id", Job{URL: "https://www.seek.com.au/job/1"}, false},
		{"missing url", Job{ListingID: "1"}, false},
		{"relative url", Job{ListingID: "1", URL: "/job/1"}, false},
		{"garbage url", Job{ListingID: "1", URL: "://nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.Valid())
		})
	}
}
