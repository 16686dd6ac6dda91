// Shared types for the scrape pipeline.
// Fetchers and extractors are kept behind interfaces so site layout
// changes stay contained in one package.

package scraper

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// Job is one extracted listing. ListingID is the dedupe key.
type Job struct {
	ListingID  string     `json:"listing_id"`
	Title      string     `json:"title"`
	Company    string     `json:"company"`
	Location   string     `json:"location"`
	Salary     string     `json:"salary,omitempty"`
	PostedText string     `json:"posted_text,omitempty"`
	PostedAt   *time.Time `json:"posted_at,omitempty"`
	JobType    string     `json:"job_type,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	URL        string     `json:"url"`
	Source     string     `json:"source"`
	ScrapedAt  time.Time  `json:"scraped_at"`
}

// Valid reports whether the record may be stored: non-empty listing id
// and an absolute URL. Records failing this are dropped, never stored.
func (j Job) Valid() bool {
	if j.ListingID == "" || j.URL == "" {
		return false
	}
	u, err := url.Parse(j.URL)
	return err == nil && u.IsAbs()
}

// Query identifies one scrape run. Zero caps mean "no cap".
type Query struct {
	Keywords     string `json:"keywords"`
	Location     string `json:"location,omitempty"`
	MaxPages     int    `json:"max_pages,omitempty"`
	MaxResults   int    `json:"max_results,omitempty"`
	PostedWithin string `json:"posted_within,omitempty"` // e.g. "3d", "12h"
}

// RawPage is one fetched search-result document.
type RawPage struct {
	HTML      string
	URL       string // final resolved URL, base for relative links
	PageIndex int
}

// PageResult is what the extractor pulls out of one page.
type PageResult struct {
	Jobs      []Job
	HasNext   bool
	PageIndex int
}

// ErrAnomaly means the page did not contain the expected listing
// structure at all. Distinct from a page that legitimately has zero
// results.
var ErrAnomaly = errors.New("page structure not recognized")

// Fetcher obtains the raw HTML for one page of search results.
type Fetcher interface {
	Fetch(ctx context.Context, q Query, pageIndex int) (*RawPage, error)
}

// Extractor parses one page into records plus a has-next signal.
type Extractor interface {
	Extract(page *RawPage) (*PageResult, error)

	// Name is the source site name (Seek, ...)
	Name() string
}
