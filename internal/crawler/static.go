package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// StaticStrategy crawls with plain HTTP GETs. It never runs page scripts,
// so client-rendered content is invisible to it.
type StaticStrategy struct {
	client *http.Client
	loop   pageLoop
}

// NewStaticStrategy builds the static tier on top of client.
func NewStaticStrategy(client *http.Client, logger *zap.Logger, metrics *monitoring.Metrics, opts ...Option) *StaticStrategy {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &StaticStrategy{
		client: client,
		loop:   pageLoop{tier: domain.TierStatic, settings: s, logger: logger, metrics: metrics},
	}
}

// Run crawls the job's site breadth-first from the root path. Redirects are
// followed; a redirect that ends in a 2xx response counts as a fetched page.
func (s *StaticStrategy) Run(ctx context.Context, job domain.Job) (*domain.CrawlResult, error) {
	return s.loop.crawl(ctx, job, func(ctx context.Context, pageURL string) (*fetchedPage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		if job.UserAgent != "" {
			req.Header.Set("User-Agent", job.UserAgent)
		}
		req.Header.Set("Accept", "text/html")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Code: resp.StatusCode, URL: pageURL}
		}

		// Decode to UTF-8 using the Content-Type charset or <meta charset>.
		reader, err := charset.NewReader(io.LimitReader(resp.Body, s.loop.settings.maxBodyBytes), resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		page := &fetchedPage{HTML: string(body)}
		if resp.Request != nil && resp.Request.URL != nil {
			page.FinalURL = resp.Request.URL.String()
		}
		return page, nil
	})
}
