package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/site-scraper/internal/domain"
	"go.uber.org/zap"
)

const linksScript = `Array.from(document.querySelectorAll('a[href]'), a => a.href)`

// ChromeConfig configures the chromedp-backed browser tier.
type ChromeConfig struct {
	Headless bool
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	// Proxy is asked for one proxy per launch; nil or "" means direct.
	Proxy func() string

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ContentSelector   string
	// IdleQuiet is how long the network must stay quiet to count as settled.
	IdleQuiet time.Duration
}

// DefaultChromeConfig waits up to 30s for the network to settle and 5s for
// a <main> element.
func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		SelectorTimeout:   5 * time.Second,
		ContentSelector:   "main",
		IdleQuiet:         500 * time.Millisecond,
	}
}

// NewChromeLauncher returns a LaunchFunc that starts a local Chrome with the
// job's user agent.
func NewChromeLauncher(cfg ChromeConfig, logger *zap.Logger) LaunchFunc {
	return func(ctx context.Context, job domain.Job) (Browser, error) {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if job.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(job.UserAgent))
		}
		if cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
		}
		if cfg.Proxy != nil {
			if p := cfg.Proxy(); p != "" {
				opts = append(opts, chromedp.ProxyServer(p))
			}
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		sugar := logger.Sugar()
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(sugar.Debugf),
			chromedp.WithErrorf(sugar.Debugf),
		)

		// The first Run starts the browser process.
		if err := chromedp.Run(browserCtx); err != nil {
			cancelBrowser()
			cancelAlloc()
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}

		return &chromeBrowser{
			cfg:           cfg,
			logger:        logger,
			browserCtx:    browserCtx,
			cancelBrowser: cancelBrowser,
			cancelAlloc:   cancelAlloc,
		}, nil
	}
}

type chromeBrowser struct {
	cfg           ChromeConfig
	logger        *zap.Logger
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

func (b *chromeBrowser) Render(ctx context.Context, pageURL string) (*RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cancelling tabCtx closes the tab.
	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	defer closeTab()

	tracker := newIdleTracker(b.cfg.IdleQuiet)
	chromedp.ListenTarget(tabCtx, tracker.observe)

	// Open the tab outside any timeout so an expiring deadline cannot tear
	// down the target mid-run.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	page := &RenderedPage{}

	navCtx, cancelNav := context.WithTimeout(tabCtx, b.cfg.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("navigate: %w", err)
		}
		page.Partial = true
	}
	if !page.Partial && !tracker.wait(navCtx) {
		page.Partial = true
	}

	if b.cfg.ContentSelector != "" {
		selCtx, cancelSel := context.WithTimeout(tabCtx, b.cfg.SelectorTimeout)
		err := chromedp.Run(selCtx, chromedp.WaitReady(b.cfg.ContentSelector, chromedp.ByQuery))
		cancelSel()
		if err != nil {
			b.logger.Debug("content selector not found, capturing DOM as-is",
				zap.String("url", pageURL), zap.String("selector", b.cfg.ContentSelector))
		}
	}

	capCtx, cancelCap := context.WithTimeout(tabCtx, b.cfg.NavigationTimeout)
	defer cancelCap()
	var links []string
	err := chromedp.Run(capCtx,
		chromedp.Location(&page.URL),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(linksScript, &links),
	)
	if err != nil {
		return nil, fmt.Errorf("capture DOM: %w", err)
	}
	page.Links = links
	if page.Links == nil {
		page.Links = []string{}
	}
	return page, nil
}

// Close shuts the browser down and releases the allocator.
func (b *chromeBrowser) Close() error {
	err := chromedp.Cancel(b.browserCtx)
	b.cancelBrowser()
	b.cancelAlloc()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// idleTracker follows in-flight requests of one tab. The network counts as
// settled once nothing is in flight and nothing changed for quiet.
type idleTracker struct {
	quiet time.Duration
	now   func() time.Time

	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

func newIdleTracker(quiet time.Duration) *idleTracker {
	return &idleTracker{
		quiet:        quiet,
		now:          time.Now,
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

func (t *idleTracker) observe(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.lastActivity = t.now()
}

func (t *idleTracker) idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && t.now().Sub(t.lastActivity) >= t.quiet
}

// wait blocks until the network settles or ctx ends. It reports whether
// the network settled.
func (t *idleTracker) wait(ctx context.Context) bool {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if t.idle() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
