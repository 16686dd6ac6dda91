package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Francocima/master-skills-scraper/internal/scraper"
)

func staticURL(server *httptest.Server, path string) URLFunc {
	return func(q scraper.Query, pageIndex int) string {
		return server.URL + path
	}
}

func TestHTTPFetcherReturnsPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>listings</body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(staticURL(server, "/data-analyst-jobs"), 5*time.Second, server.URL+"/")
	page, err := f.Fetch(context.Background(), scraper.Query{Keywords: "data analyst"}, 2)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "listings")
	assert.Equal(t, 2, page.PageIndex)
	assert.Contains(t, page.URL, "/data-analyst-jobs")
}

func TestHTTPFetcherClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Class
	}{
		{"rate limited", http.StatusTooManyRequests, Transient},
		{"server error", http.StatusServiceUnavailable, Transient},
		{"not found", http.StatusNotFound, Permanent},
		{"gone", http.StatusGone, Permanent},
		{"forbidden is a challenge", http.StatusForbidden, Blocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			f := NewHTTPFetcher(staticURL(server, "/"), 5*time.Second, "")
			_, err := f.Fetch(context.Background(), scraper.Query{}, 0)
			require.Error(t, err)

			var fe *Error
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.want, fe.Class)
			assert.Equal(t, tt.status, fe.Status)
		})
	}
}

func TestHTTPFetcherSniffsChallengeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a challenge page served with 200 must still be classified
		w.Write([]byte("<html><body>Verify you are a human to continue</body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(staticURL(server, "/"), 5*time.Second, "")
	_, err := f.Fetch(context.Background(), scraper.Query{}, 0)
	require.Error(t, err)
	assert.Equal(t, Blocked, ClassOf(err))
}

func TestHTTPFetcherConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	f := NewHTTPFetcher(staticURL(server, "/"), time.Second, "")
	_, err := f.Fetch(context.Background(), scraper.Query{}, 0)
	require.Error(t, err)
	assert.Equal(t, Transient, ClassOf(err))
}

func TestClassOfDefaultsToTransient(t *testing.T) {
	assert.Equal(t, Transient, ClassOf(errors.New("read tcp: connection reset")))
}

func TestLooksBlocked(t *testing.T) {
	assert.True(t, LooksBlocked("<title>Just a moment...</title>"))
	assert.True(t, LooksBlocked("please solve this CAPTCHA"))
	assert.False(t, LooksBlocked("<article>Data Analyst at Acme</article>"))
}
