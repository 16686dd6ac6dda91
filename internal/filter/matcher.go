package filter

import (
	"strings"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

// Matches reports whether a stored job satisfies the optional keyword
// and location filters of the listing query. Keywords match as
// case-insensitive tokens against title + company + summary + job type;
// every token must appear somewhere.
func Matches(job scraper.Job, keywords, location string) bool {
	if keywords != "" {
		text := strings.ToLower(job.Title + " " + job.Company + " " + job.Summary + " " + job.JobType)
		for _, token := range strings.Fields(strings.ToLower(keywords)) {
			if !strings.Contains(text, token) {
				return false
			}
		}
	}

	if location != "" {
		if !strings.Contains(strings.ToLower(job.Location), strings.ToLower(location)) {
			return false
		}
	}

	return true
}
