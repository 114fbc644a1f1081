package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidSourceURL = errors.New("source URL must be an absolute http(s) URL")
	ErrInvalidMaxPages  = errors.New("max pages must be at least 1")
	ErrInvalidMode      = errors.New("mode must be one of simple, browser, auto")
)

// Mode selects which fetch strategies a job may use.
type Mode string

const (
	ModeSimple  Mode = "simple"
	ModeBrowser Mode = "browser"
	ModeAuto    Mode = "auto"
)

// ParseMode maps user input onto a Mode. Empty input means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeSimple:
		return ModeSimple, nil
	case ModeBrowser:
		return ModeBrowser, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Job is the unit of work for one crawl run. It is not modified once built.
type Job struct {
	SourceURL string
	Mode      Mode
	MaxPages  int
	UserAgent string
}

// NewJob validates caller input and builds a Job.
func NewJob(sourceURL string, mode Mode, maxPages int, userAgent string) (Job, error) {
	job := Job{
		SourceURL: strings.TrimSpace(sourceURL),
		Mode:      mode,
		MaxPages:  maxPages,
		UserAgent: userAgent,
	}
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Validate reports job-fatal problems before any page is fetched.
func (j Job) Validate() error {
	if _, err := j.Origin(); err != nil {
		return err
	}
	if j.MaxPages < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxPages, j.MaxPages)
	}
	switch j.Mode {
	case ModeSimple, ModeBrowser, ModeAuto:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, j.Mode)
	}
	return nil
}

// Origin returns the scheme and host of the source URL with no path.
func (j Job) Origin() (*url.URL, error) {
	u, err := url.Parse(j.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceURL, j.SourceURL)
	}
	return &url.URL{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(u.Host)}, nil
}
