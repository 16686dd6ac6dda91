package seek

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

// slugify turns "Data Analyst" into "data-analyst" the way the site's
// search paths expect, stripping diacritics first.
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = strings.ToLower(strings.TrimSpace(result))
	return strings.Join(strings.Fields(result), "-")
}

// URLBuilder returns a pure function of (query, pageIndex) producing the
// search-result URL, e.g.
//
//	https://www.seek.com.au/data-analyst-jobs/in-Sydney-NSW?page=2
//
// pageIndex is zero-based; the site's page parameter is one-based and
// omitted on the first page.
func URLBuilder(baseURL string) func(q scraper.Query, pageIndex int) string {
	base := strings.TrimRight(baseURL, "/")
	return func(q scraper.Query, pageIndex int) string {
		var b strings.Builder
		b.WriteString(base)
		b.WriteString("/")
		b.WriteString(slugify(q.Keywords))
		b.WriteString("-jobs")
		if q.Location != "" {
			b.WriteString("/in-")
			b.WriteString(slugify(q.Location))
		}
		if pageIndex > 0 {
			b.WriteString(fmt.Sprintf("?page=%d", pageIndex+1))
		}
		return b.String()
	}
}
