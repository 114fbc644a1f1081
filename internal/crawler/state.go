package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap"
)

// crawlState is the mutable context of one strategy run: frontier, visited
// set, and the image list and service areas that every page appends to.
// It is owned by a single run and never shared.
type crawlState struct {
	origin   *url.URL
	maxPages int
	queueCap int
	filters  Filters
	logger   *zap.Logger

	queue   []string
	queued  map[string]struct{}
	visited map[string]struct{}

	pages  []domain.PageRecord
	images []domain.ImageRecord
	areas  *StringSet
}

func newCrawlState(origin *url.URL, maxPages int, filters Filters, logger *zap.Logger) *crawlState {
	s := &crawlState{
		origin:   origin,
		maxPages: maxPages,
		queueCap: 2 * maxPages,
		filters:  filters,
		logger:   logger,
		queued:   make(map[string]struct{}),
		visited:  make(map[string]struct{}),
		pages:    make([]domain.PageRecord, 0),
		images:   make([]domain.ImageRecord, 0),
		areas:    NewStringSet(),
	}
	s.enqueue("/")
	return s
}

func (s *crawlState) isVisited(path string) bool {
	_, ok := s.visited[path]
	return ok
}

// enqueue adds path to the frontier unless it was already visited or
// queued, or the queue has reached its soft cap.
func (s *crawlState) enqueue(path string) {
	if s.isVisited(path) {
		return
	}
	if _, ok := s.queued[path]; ok {
		return
	}
	if len(s.queue) >= s.queueCap {
		return
	}
	s.queued[path] = struct{}{}
	s.queue = append(s.queue, path)
}

// next dequeues the next unvisited path and marks it visited.
func (s *crawlState) next() (string, bool) {
	for len(s.queue) > 0 {
		path := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, path)
		if s.isVisited(path) {
			continue
		}
		s.visited[path] = struct{}{}
		return path, true
	}
	return "", false
}

// rebase moves the crawl to the origin the root page redirected to, e.g.
// apex to www or http to https, so the site's own links stay internal.
func (s *crawlState) rebase(finalURL string, logger *zap.Logger) {
	if finalURL == "" {
		return
	}
	u, err := url.Parse(finalURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return
	}
	if sameOrigin(u, s.origin) {
		return
	}
	next := &url.URL{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(u.Host)}
	logger.Info("site root redirected, following new origin",
		zap.String("from", s.origin.String()), zap.String("to", next.String()))
	s.origin = next
}

func (s *crawlState) full() bool {
	return len(s.pages) >= s.maxPages
}

// result deduplicates images by URL, keeping the first occurrence.
func (s *crawlState) result(tier domain.Tier) *domain.CrawlResult {
	seen := make(map[string]struct{}, len(s.images))
	images := make([]domain.ImageRecord, 0, len(s.images))
	for _, img := range s.images {
		if _, dup := seen[img.URL]; dup {
			continue
		}
		seen[img.URL] = struct{}{}
		images = append(images, img)
	}
	return &domain.CrawlResult{
		Origin:       s.origin.String(),
		Tier:         tier,
		Pages:        s.pages,
		Images:       images,
		ServiceAreas: s.areas.Slice(),
		Success:      len(s.pages) > 0,
	}
}

// fetchedPage is one page as delivered by a tier. Links is nil when the
// tier has no live DOM, in which case anchors are read from HTML. FinalURL
// is where the page ended up after redirects, empty when unknown.
type fetchedPage struct {
	HTML     string
	Links    []string
	FinalURL string
}

type pageFetcher func(ctx context.Context, pageURL string) (*fetchedPage, error)

// pageLoop drains the frontier one page at a time for a single tier.
type pageLoop struct {
	tier     domain.Tier
	settings settings
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

func (l *pageLoop) crawl(ctx context.Context, job domain.Job, fetch pageFetcher) (*domain.CrawlResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	origin, err := job.Origin()
	if err != nil {
		return nil, err
	}

	st := newCrawlState(origin, job.MaxPages, l.settings.filters, l.logger)
	first := true
	for !st.full() {
		path, ok := st.next()
		if !ok {
			break
		}
		if !first {
			if err := l.wait(ctx); err != nil {
				return nil, err
			}
		}
		first = false
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := resolvePath(st.origin, path)
		page, err := fetch(ctx, pageURL)
		if err == nil {
			if path == "/" {
				st.rebase(page.FinalURL, l.logger)
			}
			if page.FinalURL != "" {
				pageURL = page.FinalURL
			}
			var record domain.PageRecord
			record, err = st.extract(page.HTML, path, pageURL, page.Links)
			if err == nil {
				st.pages = append(st.pages, record)
				l.metrics.IncPagesFetched(string(l.tier))
				l.logger.Debug("page recorded", zap.String("url", pageURL), zap.String("tier", string(l.tier)))
				continue
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("skipping page", zap.String("url", pageURL), zap.String("tier", string(l.tier)), zap.Error(err))
		l.metrics.IncPageErrors(string(l.tier), classifyError(err))
	}
	return st.result(l.tier), nil
}

func (l *pageLoop) wait(ctx context.Context) error {
	if l.settings.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.settings.delay):
		return nil
	}
}
