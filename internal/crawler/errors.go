package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrBrowserLaunch is fatal for the browser tier; there is no further fallback.
	ErrBrowserLaunch = errors.New("headless browser failed to launch")
	// ErrExtraction marks a page whose body could not be read as a document.
	ErrExtraction = errors.New("failed to extract page")
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// classifyError maps a per-page failure to a metric label.
func classifyError(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, ErrExtraction):
		return "extract"
	case errors.As(err, &netErr):
		return "network"
	}
	return "other"
}
