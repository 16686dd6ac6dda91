package seek

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Francocima/master-skills-scraper/internal/filter"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

const sourceName = "Seek"

// Extractor parses Seek search-result pages with structural selectors.
// The site tags its markup with data-automation attributes, which are a
// lot more stable than the generated CSS class names.
type Extractor struct {
	baseURL *url.URL
}

func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	return &Extractor{baseURL: u}, nil
}

func (e *Extractor) Name() string {
	return sourceName
}

// Extract parses one page into records plus the has-next signal.
// Returns scraper.ErrAnomaly when the listing structure is missing
// entirely, so callers can tell "end of results" from "layout changed".
func (e *Extractor) Extract(page *scraper.RawPage) (*scraper.PageResult, error) {
	result := &scraper.PageResult{PageIndex: page.PageIndex}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return result, fmt.Errorf("%w: %v", scraper.ErrAnomaly, err)
	}

	base := e.baseURL
	if page.URL != "" {
		if resolved, err := url.Parse(page.URL); err == nil && resolved.IsAbs() {
			base = resolved
		}
	}

	cards := doc.Find(`article[data-automation="normalJob"], [data-automation="jobCard"]`)
	if cards.Length() == 0 {
		// A real "no results" page still carries the search container or
		// the zero-results marker. Anything else is a broken/blocked page.
		if doc.Find(`[data-automation="searchResults"]`).Length() == 0 &&
			doc.Find(`[data-automation="searchZeroResults"]`).Length() == 0 {
			return result, scraper.ErrAnomaly
		}
		return result, nil
	}

	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		job := e.extractCard(card, base, now)
		if !job.Valid() {
			return
		}
		result.Jobs = append(result.Jobs, job)
	})

	nextSelector := fmt.Sprintf(`[data-automation="page-%d"]`, page.PageIndex+2)
	if href, ok := doc.Find(nextSelector).First().Attr("href"); ok && href != "" {
		result.HasNext = true
	}

	return result, nil
}

func (e *Extractor) extractCard(card *goquery.Selection, base *url.URL, now time.Time) scraper.Job {
	job := scraper.Job{
		Source:    sourceName,
		ScrapedAt: now,
	}

	titleLink := card.Find(`a[data-automation="jobTitle"]`).First()
	if titleLink.Length() == 0 {
		// older card layout: first anchor carries the job link
		titleLink = card.Find("a").First()
	}
	job.Title = clean(titleLink.Text())

	if href, ok := titleLink.Attr("href"); ok {
		job.URL = canonicalJobURL(base, href)
		job.ListingID = ListingID(job.URL)
	}

	job.Company = clean(card.Find(`a[data-automation="jobCompany"], [data-automation="jobCompany"]`).First().Text())
	job.Location = clean(card.Find(`a[data-automation="jobLocation"], [data-automation="jobLocation"]`).First().Text())
	job.Salary = clean(card.Find(`[data-automation="jobSalary"]`).First().Text())
	job.Summary = clean(card.Find(`[data-automation="jobShortDescription"]`).First().Text())
	job.PostedText = clean(card.Find(`[data-automation="jobListingDate"]`).First().Text())

	if age, ok := filter.ParseAge(job.PostedText); ok {
		posted := now.Add(-age)
		job.PostedAt = &posted
	}

	job.JobType = Categorize(job.Title)
	return job
}

// canonicalJobURL resolves href against the page URL and strips the
// tracking query string so the same listing always canonicalizes to the
// same URL.
func canonicalJobURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.RawQuery = ""
	resolved.Fragment = ""
	return resolved.String()
}

// ListingID pulls the site-assigned id out of a job URL: the segment
// after /job/ and before any query string.
func ListingID(jobURL string) string {
	start := strings.Index(jobURL, "/job/")
	if start == -1 {
		return ""
	}
	id := jobURL[start+len("/job/"):]
	if end := strings.IndexAny(id, "?/"); end != -1 {
		id = id[:end]
	}
	return id
}

// Categorize buckets a listing by title keywords.
func Categorize(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "data analyst"):
		return "Data Analyst"
	case strings.Contains(t, "data engineer"):
		return "Data Engineer"
	case strings.Contains(t, "business analyst"):
		return "Business Analyst"
	case strings.Contains(t, "analytics"):
		return "Analytics Engineer"
	case strings.Contains(t, "data scientist"):
		return "Data Scientist"
	case strings.Contains(t, "report developer"):
		return "Report Developer"
	case strings.Contains(t, "solutions architect"):
		return "Solutions Architect"
	case strings.Contains(t, "engineer"):
		return "Data Engineer"
	}
	return "unknown"
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
