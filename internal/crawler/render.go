package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap"
)

// Browser is a launched headless browser. Render opens a fresh tab for
// pageURL and always closes it before returning.
type Browser interface {
	Render(ctx context.Context, pageURL string) (*RenderedPage, error)
	Close() error
}

// RenderedPage is the DOM of a page after its scripts ran.
type RenderedPage struct {
	HTML string
	// Links are the live anchor hrefs, including ones injected by
	// client-side routing.
	Links []string
	// Partial is set when the page did not settle before the timeout and
	// the DOM was captured as-is.
	Partial bool
	// URL is the document location at capture time, after any redirects.
	URL string
}

// LaunchFunc starts one browser for a whole job.
type LaunchFunc func(ctx context.Context, job domain.Job) (Browser, error)

// RenderStrategy crawls through a headless browser so client-rendered
// content and links are visible.
type RenderStrategy struct {
	launch LaunchFunc
	loop   pageLoop
}

func NewRenderStrategy(launch LaunchFunc, logger *zap.Logger, metrics *monitoring.Metrics, opts ...Option) *RenderStrategy {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &RenderStrategy{
		launch: launch,
		loop:   pageLoop{tier: domain.TierBrowser, settings: s, logger: logger, metrics: metrics},
	}
}

// Run launches the browser, drains the frontier and closes the browser on
// every exit path. A launch failure is returned, never an empty result.
func (r *RenderStrategy) Run(ctx context.Context, job domain.Job) (*domain.CrawlResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	browser, err := r.launch(ctx, job)
	if err != nil {
		if !errors.Is(err, ErrBrowserLaunch) {
			err = fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
		return nil, err
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			r.loop.logger.Warn("failed to close browser", zap.Error(cerr))
		}
	}()

	return r.loop.crawl(ctx, job, func(ctx context.Context, pageURL string) (*fetchedPage, error) {
		page, err := browser.Render(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if page.Partial {
			r.loop.logger.Warn("page did not settle, using partial DOM", zap.String("url", pageURL))
		}
		return &fetchedPage{HTML: page.HTML, Links: page.Links, FinalURL: page.URL}, nil
	})
}
