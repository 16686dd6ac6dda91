package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

const maxRedirectHops = 10

// rotated per request to look less like a single automated client
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
}

// URLFunc builds the search-result URL for a query and zero-based page
// index. Must be a pure function of its inputs so fetches are safely
// retryable.
type URLFunc func(q scraper.Query, pageIndex int) string

// HTTPFetcher fetches search-result pages with a plain HTTP client.
type HTTPFetcher struct {
	client   *http.Client
	buildURL URLFunc
	timeout  time.Duration
	referer  string
}

func NewHTTPFetcher(buildURL URLFunc, timeout time.Duration, referer string) *HTTPFetcher {
	jar, _ := cookiejar.New(nil)
	return &HTTPFetcher{
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirectHops {
					return fmt.Errorf("stopped after %d redirects", maxRedirectHops)
				}
				return nil
			},
		},
		buildURL: buildURL,
		timeout:  timeout,
		referer:  referer,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, q scraper.Query, pageIndex int) (*scraper.RawPage, error) {
	target := f.buildURL(q, pageIndex)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Class: Permanent, URL: target, Err: err}
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Class: Transient, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Class: classifyStatus(resp.StatusCode), URL: target, Status: resp.StatusCode}
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Reader = resp.Body
	}
	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, &Error{Class: Transient, URL: target, Err: err}
	}

	html := string(body)
	if LooksBlocked(html) {
		return nil, &Error{Class: Blocked, URL: target, Status: resp.StatusCode, Err: errors.New("bot-check markers in response body")}
	}

	return &scraper.RawPage{
		HTML:      html,
		URL:       resp.Request.URL.String(),
		PageIndex: pageIndex,
	}, nil
}

// LooksBlocked sniffs the body for anti-automation markers. A 200 with
// a challenge page must not reach the extractor as a normal page.
func LooksBlocked(body string) bool {
	lower := strings.ToLower(body)
	markers := []string{
		"captcha",
		"security check",
		"just a moment",
		"attention required",
		"verify you are a human",
	}
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
