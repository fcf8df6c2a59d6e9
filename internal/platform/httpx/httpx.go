// Package httpx holds the status plumbing shared by the hand-written HTTP
// backend clients and the retry policy.
package httpx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxBodyInError = 256

// StatusError is a non-2xx response from a backend.
type StatusError struct {
	StatusCode int
	Body       string
	// RetryAfter is the server's requested wait, zero when it sent none.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if r := []rune(body); len(r) > maxBodyInError {
		body = string(r[:maxBodyInError]) + "..."
	}
	if body == "" {
		return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

// CheckResponse returns a *StatusError for non-2xx responses. body is what
// the caller already read; Retry-After waits are capped at maxWait.
func CheckResponse(resp *http.Response, body []byte, maxWait time.Duration) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		RetryAfter: RetryAfter(resp, maxWait),
	}
}

// StatusCode digs an HTTP status out of an error chain, 0 when there is none.
func StatusCode(err error) int {
	var sc interface{ HTTPStatusCode() int }
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

func IsRateLimitStatus(code int) bool { return code == http.StatusTooManyRequests }

// IsTransportError reports whether the request never got a response.
func IsTransportError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// RetryAfter parses the Retry-After header in either delta-seconds or
// HTTP-date form. Missing or unparsable headers yield zero.
func RetryAfter(resp *http.Response, maxWait time.Duration) time.Duration {
	if resp == nil {
		return 0
	}
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = time.Until(at)
	}
	if d < 0 {
		d = 0
	}
	if maxWait > 0 && d > maxWait {
		d = maxWait
	}
	return d
}

// Jitter spreads d uniformly over +/-20%.
func Jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := float64(d) * 0.2
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}
