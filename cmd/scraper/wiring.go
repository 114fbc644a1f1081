package main

import (
	"fmt"
	"net/http"

	"github.com/user/site-scraper/internal/config"
	"github.com/user/site-scraper/internal/crawler"
	"github.com/user/site-scraper/internal/monitoring"
	"github.com/user/site-scraper/internal/proxy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a production logger at the given level. Errors carry a
// stack trace.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// buildController assembles both tiers from configuration.
func buildController(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*crawler.Controller, error) {
	proxies, err := proxy.NewManager(cfg.Proxies)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxies.Enabled() {
		transport.Proxy = proxies.ProxyFunc()
	}
	client := &http.Client{Timeout: cfg.RequestTimeout, Transport: transport}

	opts := []crawler.Option{
		crawler.WithFilters(crawler.Filters{ImageKeywords: cfg.ImageKeywords, AltKeywords: cfg.AltKeywords}),
		crawler.WithDelay(cfg.Delay),
		crawler.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}

	chromeCfg := crawler.DefaultChromeConfig()
	chromeCfg.Headless = cfg.Headless
	chromeCfg.ExecPath = cfg.ChromePath
	chromeCfg.NavigationTimeout = cfg.NavigationTimeout
	chromeCfg.SelectorTimeout = cfg.SelectorTimeout
	chromeCfg.ContentSelector = cfg.ContentSelector
	if proxies.Enabled() {
		chromeCfg.Proxy = proxies.GetProxy
	}

	static := crawler.NewStaticStrategy(client, logger, metrics, opts...)
	render := crawler.NewRenderStrategy(crawler.NewChromeLauncher(chromeCfg, logger), logger, metrics, opts...)
	return crawler.NewController(static, render, nil, logger, metrics), nil
}
