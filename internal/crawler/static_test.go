package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap/zaptest"
)

// site serves fixed HTML per path and counts hits.
type site struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
	agent string
}

func newSite(pages map[string]string) *site {
	return &site{pages: pages, hits: make(map[string]int)}
}

func (s *site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.agent = r.Header.Get("User-Agent")
	s.mu.Unlock()

	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, body)
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *site) userAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

func newStatic(t *testing.T, opts ...Option) (*StaticStrategy, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	return NewStaticStrategy(http.DefaultClient, zaptest.NewLogger(t), metrics, opts...), metrics
}

func paths(r *domain.CrawlResult) []string {
	out := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		out = append(out, p.Path)
	}
	return out
}

func TestStaticStrategyRun(t *testing.T) {
	t.Parallel()

	t.Run("crawls linked pages breadth first", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(newSite(map[string]string{
			"/":                `<title>Acme Lawn Care</title><h1>Welcome</h1><a href="/about">About</a><a href="/services/">Services</a>`,
			"/about":           `<title>About</title><a href="/team">Team</a><a href="/">Home</a>`,
			"/services":        `<title>Services</title><a href="/services/mowing">Mowing</a>`,
			"/team":            `<title>Team</title>`,
			"/services/mowing": `<title>Mowing</title>`,
		}))
		defer srv.Close()

		strategy, metrics := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 10, "TestBot/1.0")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)

		assert.Equal(t, domain.TierStatic, result.Tier)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"/", "/about", "/services", "/team", "/services/mowing"}, paths(result))
		assert.Equal(t, 5.0, testutil.ToFloat64(metrics.PagesFetched.WithLabelValues("static")))
	})

	t.Run("root with h1 and one link", func(t *testing.T) {
		t.Parallel()
		s := newSite(map[string]string{
			"/":      `<html><head><title>Acme Lawn Care</title></head><body><h1>Welcome</h1><a href="/about">About</a></body></html>`,
			"/about": `<html><body>About us</body></html>`,
		})
		srv := httptest.NewServer(s)
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeAuto, 5, "TestBot/1.0")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)

		require.Len(t, result.Pages, 2)
		assert.Equal(t, "Acme Lawn Care", result.Pages[0].Title)
		assert.Equal(t, "Welcome", result.Pages[0].FirstH1)
		assert.Equal(t, []domain.SiteMapEntry{
			{URL: srv.URL + "/", Title: "Acme Lawn Care"},
			{URL: srv.URL + "/about", Title: ""},
		}, result.SiteMap())
		assert.Equal(t, "TestBot/1.0", s.userAgent())
	})

	t.Run("failed page is skipped", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(newSite(map[string]string{
			"/":        `<h1>Welcome</h1><a href="/missing">Gone</a><a href="/contact">Contact</a>`,
			"/contact": `<h1>Contact</h1>`,
		}))
		defer srv.Close()

		strategy, metrics := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, []string{"/", "/contact"}, paths(result))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PageErrors.WithLabelValues("static", "status")))
	})

	t.Run("page cap", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(newSite(map[string]string{
			"/":  `<a href="/a">a</a><a href="/b">b</a><a href="/c">c</a>`,
			"/a": `a`, "/b": `b`, "/c": `c`,
		}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 2, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, []string{"/", "/a"}, paths(result))
	})

	t.Run("no path is fetched twice", func(t *testing.T) {
		t.Parallel()
		s := newSite(map[string]string{
			"/":  `<a href="/a">a</a><a href="/a/">a</a><a href="/b?p=1">b</a><a href="/">home</a>`,
			"/a": `<a href="/b">b</a><a href="/">home</a><a href="/a#top">self</a>`,
			"/b": `<a href="/a">a</a><a href="/b?p=2">b</a>`,
		})
		srv := httptest.NewServer(s)
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 50, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, p := range result.Pages {
			assert.False(t, seen[p.Path], "path %s recorded twice", p.Path)
			seen[p.Path] = true
		}
		for _, p := range []string{"/", "/a", "/b"} {
			assert.Equal(t, 1, s.hitCount(p), p)
		}
	})

	t.Run("cross origin links stay off the frontier", func(t *testing.T) {
		t.Parallel()
		other := newSite(map[string]string{"/x": `x`})
		otherSrv := httptest.NewServer(other)
		defer otherSrv.Close()

		srv := httptest.NewServer(newSite(map[string]string{
			"/": fmt.Sprintf(`<h1>Home</h1><a href="%s/x">Elsewhere</a>`, otherSrv.URL),
		}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, []string{"/"}, paths(result))
		assert.Empty(t, result.Pages[0].InternalLinks)
		assert.Zero(t, other.hitCount("/x"))
	})

	t.Run("images are deduplicated by url", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(newSite(map[string]string{
			"/":      `<img src="https://cdn.example/brand.png" alt="Acme logo"><a href="/about">About</a>`,
			"/about": `<img src="https://cdn.example/brand.png" alt="Acme logo again"><img src="/hero.jpg">`,
		}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, []domain.ImageRecord{
			{URL: "https://cdn.example/brand.png", Alt: "Acme logo", Page: "/"},
			{URL: srv.URL + "/hero.jpg", Alt: "", Page: "/about"},
		}, result.Images)
	})

	t.Run("nothing reachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.NotNil(t, result.Pages)
		assert.Empty(t, result.Pages)
	})

	t.Run("follows a redirected root to its new origin", func(t *testing.T) {
		t.Parallel()
		www := newSite(map[string]string{
			"/":      `<title>Acme</title><h1>Welcome</h1><a href="/about">About</a>`,
			"/about": `<title>About</title><a href="/">Home</a>`,
		})
		wwwSrv := httptest.NewServer(www)
		defer wwwSrv.Close()
		var apexHits int
		var mu sync.Mutex
		apex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			apexHits++
			mu.Unlock()
			http.Redirect(w, r, wwwSrv.URL+r.URL.Path, http.StatusMovedPermanently)
		}))
		defer apex.Close()

		strategy, metrics := newStatic(t)
		job, err := domain.NewJob(apex.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"/", "/about"}, paths(result))
		assert.Equal(t, wwwSrv.URL, result.Origin)
		assert.Equal(t, "Welcome", result.Pages[0].FirstH1)
		assert.Equal(t, []string{"/about"}, result.Pages[0].InternalLinks)
		assert.Equal(t, 1, www.hitCount("/about"))
		mu.Lock()
		assert.Equal(t, 1, apexHits)
		mu.Unlock()
		assert.Zero(t, testutil.CollectAndCount(metrics.PageErrors))
	})

	t.Run("decodes the declared charset", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// Latin-1 bytes, not valid UTF-8.
			w.Write([]byte("<title>Caf\xe9</title><h1>Ren\xe9</h1>"))
		}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 1, "")
		require.NoError(t, err)

		result, err := strategy.Run(context.Background(), job)
		require.NoError(t, err)
		require.Len(t, result.Pages, 1)
		assert.Equal(t, "Café", result.Pages[0].Title)
		assert.Equal(t, "René", result.Pages[0].FirstH1)
	})

	t.Run("cancelled context aborts the job", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(newSite(map[string]string{"/": `<h1>Home</h1>`}))
		defer srv.Close()

		strategy, _ := newStatic(t)
		job, err := domain.NewJob(srv.URL, domain.ModeSimple, 5, "")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = strategy.Run(ctx, job)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid job is rejected before fetching", func(t *testing.T) {
		t.Parallel()
		strategy, _ := newStatic(t)
		_, err := strategy.Run(context.Background(), domain.Job{SourceURL: "not a url", Mode: domain.ModeSimple, MaxPages: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidSourceURL)
	})
}

func TestStaticStrategyBodyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newSite(map[string]string{
		"/": `<title>Short</title>` + string(make([]byte, 64)) + `<h1>Never read</h1>`,
	}))
	defer srv.Close()

	strategy, _ := newStatic(t, WithMaxBodyBytes(20))
	job, err := domain.NewJob(srv.URL, domain.ModeSimple, 1, "")
	require.NoError(t, err)

	result, err := strategy.Run(context.Background(), job)
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Short", result.Pages[0].Title)
	assert.Empty(t, result.Pages[0].FirstH1)
}
