package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Transient marks an error as safe to retry.
type Transient struct {
	Err        error
	StatusCode int
}

func (e *Transient) Error() string { return e.Err.Error() }

func (e *Transient) Unwrap() error { return e.Err }

// MarkTransient wraps err as retryable, recording the HTTP status when known.
func MarkTransient(err error, statusCode int) *Transient {
	return &Transient{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err should be retried. Explicitly marked
// errors, network timeouts, and connection-level failures qualify.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var t *Transient
	if errors.As(err, &t) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// HTTP client libraries flatten some network errors into strings.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// RetryableStatus reports whether an HTTP status code indicates a
// server-side condition worth retrying.
func RetryableStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
