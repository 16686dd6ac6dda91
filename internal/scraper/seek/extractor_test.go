package seek

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div data-automation="searchResults">
  <article data-automation="normalJob">
    <a data-automation="jobTitle" href="/job/84392017?type=standard&ref=search">Senior Data Analyst</a>
    <a data-automation="jobCompany">Acme Analytics</a>
    <a data-automation="jobLocation">Sydney NSW</a>
    <span data-automation="jobSalary">$120k - $140k</span>
    <span data-automation="jobShortDescription">
      Own the reporting stack.
      SQL and Python required.
    </span>
    <span data-automation="jobListingDate">Posted 2d ago</span>
  </article>
  <article data-automation="normalJob">
    <a data-automation="jobTitle" href="https://www.seek.com.au/job/84392018">Platform Engineer</a>
    <a data-automation="jobCompany">Initech</a>
    <a data-automation="jobLocation">Melbourne VIC</a>
  </article>
</div>
<a data-automation="page-2" href="/data-analyst-jobs?page=2">Next</a>
</body></html>`

const lastPage = `<!DOCTYPE html>
<html><body>
<div data-automation="searchResults">
  <article data-automation="normalJob">
    <a data-automation="jobTitle" href="/job/84392019">Data Scientist</a>
    <a data-automation="jobCompany">Hooli</a>
  </article>
</div>
</body></html>`

const zeroResultsPage = `<!DOCTYPE html>
<html><body>
<div data-automation="searchZeroResults">No matching jobs found</div>
</body></html>`

const interstitialPage = `<!DOCTYPE html>
<html><body><h1>Just a moment...</h1></body></html>`

func mustExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor("https://www.seek.com.au")
	require.NoError(t, err)
	return e
}

func TestExtractParsesCards(t *testing.T) {
	e := mustExtractor(t)

	result, err := e.Extract(&scraper.RawPage{
		HTML:      resultsPage,
		URL:       "https://www.seek.com.au/data-analyst-jobs",
		PageIndex: 0,
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)
	assert.True(t, result.HasNext)

	first := result.Jobs[0]
	assert.Equal(t, "84392017", first.ListingID)
	assert.Equal(t, "Senior Data Analyst", first.Title)
	assert.Equal(t, "Acme Analytics", first.Company)
	assert.Equal(t, "Sydney NSW", first.Location)
	assert.Equal(t, "$120k - $140k", first.Salary)
	assert.Equal(t, "Own the reporting stack. SQL and Python required.", first.Summary, "whitespace collapsed")
	assert.Equal(t, "Posted 2d ago", first.PostedText)
	assert.Equal(t, "https://www.seek.com.au/job/84392017", first.URL, "tracking query stripped")
	assert.Equal(t, "Data Analyst", first.JobType)
	assert.Equal(t, "Seek", first.Source)
	require.NotNil(t, first.PostedAt)
	assert.True(t, first.PostedAt.Before(first.ScrapedAt))

	second := result.Jobs[1]
	assert.Equal(t, "84392018", second.ListingID)
	assert.Empty(t, second.Salary, "missing optional fields stay empty")
	assert.Empty(t, second.PostedText)
	assert.Nil(t, second.PostedAt)
}

func TestExtractLastPageHasNoNext(t *testing.T) {
	e := mustExtractor(t)

	result, err := e.Extract(&scraper.RawPage{HTML: lastPage, PageIndex: 3})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)
	assert.False(t, result.HasNext)
}

func TestExtractZeroResultsIsNotAnAnomaly(t *testing.T) {
	e := mustExtractor(t)

	result, err := e.Extract(&scraper.RawPage{HTML: zeroResultsPage, PageIndex: 0})
	require.NoError(t, err)
	assert.Empty(t, result.Jobs)
	assert.False(t, result.HasNext)
}

func TestExtractMissingStructureIsAnAnomaly(t *testing.T) {
	e := mustExtractor(t)

	_, err := e.Extract(&scraper.RawPage{HTML: interstitialPage, PageIndex: 0})
	assert.True(t, errors.Is(err, scraper.ErrAnomaly))
}

func TestExtractHasNextMatchesPageIndex(t *testing.T) {
	// a page-2 affordance only signals more pages when we are on page 1
	e := mustExtractor(t)

	result, err := e.Extract(&scraper.RawPage{HTML: resultsPage, PageIndex: 1})
	require.NoError(t, err)
	assert.False(t, result.HasNext, "page index 1 needs a page-3 link")
}

func TestListingID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.seek.com.au/job/84392017", "84392017"},
		{"https://www.seek.com.au/job/84392017?type=standard", "84392017"},
		{"https://www.seek.com.au/job/84392017/apply", "84392017"},
		{"/job/84392017", "84392017"},
		{"https://www.seek.com.au/data-analyst-jobs", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListingID(tt.url), "url %q", tt.url)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Senior Data Analyst", "Data Analyst"},
		{"DATA ENGINEER (Contract)", "Data Engineer"},
		{"Business Analyst - Finance", "Business Analyst"},
		{"Analytics Lead", "Analytics Engineer"},
		{"Data Scientist II", "Data Scientist"},
		{"Report Developer", "Report Developer"},
		{"Solutions Architect", "Solutions Architect"},
		{"Platform Engineer", "Data Engineer"},
		{"Office Manager", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.title), "title %q", tt.title)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Data Analyst", "data-analyst"},
		{"  data   analyst  ", "data-analyst"},
		{"Sydney NSW", "sydney-nsw"},
		{"développeur", "developpeur"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "input %q", tt.in)
	}
}

func TestURLBuilder(t *testing.T) {
	build := URLBuilder("https://www.seek.com.au/")

	q := scraper.Query{Keywords: "Data Analyst"}
	assert.Equal(t, "https://www.seek.com.au/data-analyst-jobs", build(q, 0))
	assert.Equal(t, "https://www.seek.com.au/data-analyst-jobs?page=2", build(q, 1))

	q.Location = "Sydney NSW"
	assert.Equal(t, "https://www.seek.com.au/data-analyst-jobs/in-sydney-nsw", build(q, 0))
	assert.Equal(t, "https://www.seek.com.au/data-analyst-jobs/in-sydney-nsw?page=3", build(q, 2))
}
