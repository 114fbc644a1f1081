package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/site-scraper/internal/domain"
	"github.com/user/site-scraper/internal/monitoring"
	"github.com/user/site-scraper/internal/output"
	"go.uber.org/zap"
)

type scrapeRequest struct {
	URL       string `json:"url"`
	Mode      string `json:"mode"`
	MaxPages  int    `json:"max_pages"`
	UserAgent string `json:"user_agent"`
	Force     bool   `json:"force"`
}

type scrapeResponse struct {
	Tier         domain.Tier         `json:"tier"`
	Success      bool                `json:"success"`
	Pages        int                 `json:"pages"`
	Images       int                 `json:"images"`
	ServiceAreas int                 `json:"service_areas"`
	OutputDir    string              `json:"output_dir"`
	Result       *domain.CrawlResult `json:"result"`
}

func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.buildJob(req)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.recent != nil && !req.Force {
		recent, err := s.recent.IsRecentlyScraped(r.Context(), job.SourceURL)
		if err != nil {
			// The guard is advisory; a Redis outage must not block scraping.
			s.logger.Warn("recently-scraped check failed", zap.String("url", job.SourceURL), zap.Error(err))
		} else if recent {
			s.respondWithError(w, http.StatusConflict, "URL was scraped recently; set force to scrape again")
			return
		}
	}

	result, err := s.scraper.Run(r.Context(), job)
	if err != nil {
		s.metrics.IncJobs(monitoring.JobFailed)
		s.logger.Error("scrape failed", zap.String("url", job.SourceURL), zap.Error(err))
		s.respondWithError(w, statusForError(err), err.Error())
		return
	}

	dir, err := s.outputDir(job)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := output.NewWriter(dir, s.logger).Write(result); err != nil {
		s.metrics.IncJobs(monitoring.JobFailed)
		s.logger.Error("failed to write scrape artifacts", zap.String("dir", dir), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not write scrape artifacts")
		return
	}

	if s.recent != nil {
		if err := s.recent.MarkAsScraped(r.Context(), job.SourceURL, s.config.DedupWindow); err != nil {
			s.logger.Warn("failed to mark URL as scraped", zap.String("url", job.SourceURL), zap.Error(err))
		}
	}
	s.metrics.IncJobs(monitoring.JobStatus(result.Success))

	s.respondWithJSON(w, http.StatusOK, scrapeResponse{
		Tier:         result.Tier,
		Success:      result.Success,
		Pages:        len(result.Pages),
		Images:       len(result.Images),
		ServiceAreas: len(result.ServiceAreas),
		OutputDir:    dir,
		Result:       result,
	})
}

func (s *Server) buildJob(req scrapeRequest) (domain.Job, error) {
	rawMode := req.Mode
	if rawMode == "" {
		rawMode = s.config.Mode
	}
	mode, err := domain.ParseMode(rawMode)
	if err != nil {
		return domain.Job{}, err
	}
	maxPages := req.MaxPages
	if maxPages == 0 {
		maxPages = s.config.MaxPages
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = s.config.UserAgent
	}
	return domain.NewJob(req.URL, mode, maxPages, userAgent)
}

// outputDir keeps each site's artifacts apart under the configured output
// directory.
func (s *Server) outputDir(job domain.Job) (string, error) {
	origin, err := job.Origin()
	if err != nil {
		return "", err
	}
	host := strings.NewReplacer(":", "_", "/", "_").Replace(origin.Host)
	return filepath.Join(s.config.Output, host), nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSourceURL),
		errors.Is(err, domain.ErrInvalidMaxPages),
		errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	healthStatus := map[string]string{"status": "ok"}

	if s.recent != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.recent.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			healthStatus["status"] = "degraded"
			s.logger.Error("health check failed for redis", zap.Error(err))
			s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
			return
		}
		healthStatus["redis"] = "healthy"
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
