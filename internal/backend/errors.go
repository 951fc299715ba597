package backend

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrMalformedBody reports a 200 response whose body could not be decoded.
	ErrMalformedBody = errors.New("malformed response body")
	// ErrDuplicatePreset reports a preset list that repeats a key.
	ErrDuplicatePreset = errors.New("duplicate preset key")
	// ErrUnreachable marks transport failures where no HTTP response arrived.
	ErrUnreachable = errors.New("backend unreachable")
)

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, body)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a *StatusError.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsUnreachable reports whether err is a transport failure (no response at all).
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
