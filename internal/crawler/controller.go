package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap"
)

// Strategy crawls one job with a single tier and returns what it found.
// Per-page failures are absorbed; only job- or strategy-fatal errors are
// returned.
type Strategy interface {
	Run(ctx context.Context, job domain.Job) (*domain.CrawlResult, error)
}

// PageSignal reports whether a page shows real content.
type PageSignal func(domain.PageRecord) bool

func HasFirstH1(p domain.PageRecord) bool { return strings.TrimSpace(p.FirstH1) != "" }
func HasTitle(p domain.PageRecord) bool   { return strings.TrimSpace(p.Title) != "" }
func HasH2(p domain.PageRecord) bool      { return len(p.AllH2s) > 0 }

// DefaultSignals are the clauses of the default sufficiency check.
func DefaultSignals() []PageSignal {
	return []PageSignal{HasFirstH1, HasTitle, HasH2}
}

// SufficiencyFunc decides whether a tier's result is usable or the next
// tier has to start over.
type SufficiencyFunc func(*domain.CrawlResult) bool

// SufficientWhenAny accepts a result when at least one page satisfies at
// least one signal. A result without pages is never sufficient.
func SufficientWhenAny(signals ...PageSignal) SufficiencyFunc {
	return func(r *domain.CrawlResult) bool {
		if r == nil {
			return false
		}
		for _, p := range r.Pages {
			for _, sig := range signals {
				if sig(p) {
					return true
				}
			}
		}
		return false
	}
}

// DefaultSufficiency is a coarse "real page or empty shell" test.
func DefaultSufficiency() SufficiencyFunc {
	return SufficientWhenAny(DefaultSignals()...)
}

type stage struct {
	tier     domain.Tier
	strategy Strategy
}

// Controller picks a tier for a job and, in auto mode, escalates through
// the tiers in order until one produces a sufficient result.
type Controller struct {
	stages     []stage
	sufficient SufficiencyFunc
	logger     *zap.Logger
	metrics    *monitoring.Metrics
}

// NewController wires the static and browser tiers. A nil sufficient uses
// DefaultSufficiency.
func NewController(static, render Strategy, sufficient SufficiencyFunc, logger *zap.Logger, metrics *monitoring.Metrics) *Controller {
	if sufficient == nil {
		sufficient = DefaultSufficiency()
	}
	return &Controller{
		stages: []stage{
			{tier: domain.TierStatic, strategy: static},
			{tier: domain.TierBrowser, strategy: render},
		},
		sufficient: sufficient,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes job. The returned result is always the output of the last
// tier that ran; earlier tiers' results are discarded, never merged.
func (c *Controller) Run(ctx context.Context, job domain.Job) (*domain.CrawlResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	switch job.Mode {
	case domain.ModeSimple:
		return c.runStage(ctx, c.stages[0], job)
	case domain.ModeBrowser:
		return c.runStage(ctx, c.stages[len(c.stages)-1], job)
	}

	var (
		result *domain.CrawlResult
		err    error
	)
	for i, st := range c.stages {
		result, err = c.runStage(ctx, st, job)
		if err != nil {
			return nil, err
		}
		if i == len(c.stages)-1 || c.sufficient(result) {
			break
		}
		c.logger.Info("content insufficient, escalating",
			zap.String("url", job.SourceURL),
			zap.String("from", string(st.tier)),
			zap.String("to", string(c.stages[i+1].tier)),
			zap.Int("pages", len(result.Pages)),
		)
		c.metrics.IncEscalations()
	}
	return result, nil
}

func (c *Controller) runStage(ctx context.Context, st stage, job domain.Job) (*domain.CrawlResult, error) {
	c.logger.Info("starting crawl", zap.String("url", job.SourceURL), zap.String("tier", string(st.tier)), zap.Int("max_pages", job.MaxPages))
	start := time.Now()
	result, err := st.strategy.Run(ctx, job)
	c.metrics.ObserveJobDuration(string(st.tier), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s tier: %w", st.tier, err)
	}
	c.logger.Info("crawl finished",
		zap.String("tier", string(st.tier)),
		zap.Int("pages", len(result.Pages)),
		zap.Int("images", len(result.Images)),
		zap.Int("service_areas", len(result.ServiceAreas)),
	)
	return result, nil
}
