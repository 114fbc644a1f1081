package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/user/site-scraper/internal/config"
	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/user/site-scraper/internal/api Scraper,RecentScrapes

// Scraper runs one crawl job to completion.
type Scraper interface {
	Run(ctx context.Context, job domain.Job) (*domain.CrawlResult, error)
}

// RecentScrapes guards against scraping the same site again too soon.
type RecentScrapes interface {
	IsRecentlyScraped(ctx context.Context, sourceURL string) (bool, error)
	MarkAsScraped(ctx context.Context, sourceURL string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	scraper    Scraper
	recent     RecentScrapes
	metrics    *monitoring.Metrics
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
}

// NewServer wires the API. recent may be nil, which disables the
// recently-scraped guard.
func NewServer(cfg *config.Config, scraper Scraper, recent RecentScrapes, m *monitoring.Metrics, g prometheus.Gatherer, l *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		scraper:  scraper,
		recent:   recent,
		metrics:  m,
		gatherer: g,
		logger:   l,
	}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// Scrapes run inside the request.
		WriteTimeout: s.config.APITimeout + 30*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
