package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/platform/httpx"
)

type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindRejected    ErrorKind = "rejected"
	KindUnreachable ErrorKind = "unreachable"
	KindEmpty       ErrorKind = "empty"
	KindExhausted   ErrorKind = "exhausted"
)

// GenerationError is the single failure type surfaced by generation backends.
type GenerationError struct {
	Provider string
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s generation %s", e.Provider, e.Kind)
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err carries a rate-limit or quota signal.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind == KindRateLimited
	}
	return looksRateLimited(err)
}

// classify turns a raw provider error into a GenerationError. status is the
// HTTP status the provider SDK reported, 0 when unknown.
func classify(provider string, status int, err error) error {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if status == 0 {
		status = httpx.StatusCode(err)
	}
	kind := KindRejected
	switch {
	case httpx.IsRateLimitStatus(status), status == 0 && looksRateLimited(err):
		kind = KindRateLimited
	case status >= http.StatusInternalServerError, status == 0 && httpx.IsTransportError(err):
		kind = KindUnreachable
	}
	return &GenerationError{Provider: provider, Kind: kind, Attempts: 1, Err: err}
}

func emptyResponse(provider string) error {
	return &GenerationError{Provider: provider, Kind: KindEmpty, Attempts: 1, Err: errors.New("backend returned no text")}
}

func looksRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, frag := range []string{"429", "quota", "rate limit", "rate_limit", "resource_exhausted", "too many requests"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
