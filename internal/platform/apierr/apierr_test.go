package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type quotaError struct{ left int }

func (e *quotaError) Error() string { return fmt.Sprintf("quota left %d", e.left) }

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("lesson not found")
	e := New(http.StatusNotFound, "not_found", cause)
	if e.Error() != "lesson not found" || !errors.Is(e, cause) {
		t.Fatalf("unexpected error: %v", e)
	}
	if got := New(http.StatusServiceUnavailable, "busy", nil).Error(); got != "busy" {
		t.Fatalf("got %q", got)
	}
	if got := (&Error{Status: 500}).Error(); got != "api error (500)" {
		t.Fatalf("got %q", got)
	}
}

func TestTableTranslateFirstMatchWins(t *testing.T) {
	errGone := errors.New("gone")
	table := Table{
		{Match: Is(errGone), Status: http.StatusGone, Code: "gone"},
		{Match: As[*quotaError](), Status: http.StatusTooManyRequests, Code: "quota"},
		{Match: func(error) bool { return true }, Status: http.StatusTeapot, Code: "fallback"},
	}

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("load: %w", errGone), http.StatusGone, "gone"},
		{fmt.Errorf("call: %w", &quotaError{left: 0}), http.StatusTooManyRequests, "quota"},
		{errors.New("other"), http.StatusTeapot, "fallback"},
	}
	for _, tc := range cases {
		var ae *Error
		if !errors.As(table.Translate(tc.err), &ae) {
			t.Fatalf("%v: not translated", tc.err)
		}
		if ae.Status != tc.status || ae.Code != tc.code {
			t.Fatalf("%v: got %d/%s", tc.err, ae.Status, ae.Code)
		}
		if !errors.Is(ae, tc.err) {
			t.Fatalf("translation must keep the cause")
		}
	}
}

func TestTableTranslatePassThrough(t *testing.T) {
	if (Table{}).Translate(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	plain := errors.New("plain")
	if got := (Table{}).Translate(plain); got != plain {
		t.Fatalf("unmatched error should be returned as is")
	}
	pre := New(http.StatusBadRequest, "invalid_request", plain)
	table := Table{{Match: func(error) bool { return true }, Status: 500, Code: "x"}}
	if got := table.Translate(pre); got != error(pre) {
		t.Fatalf("errors with a status should not be rewrapped")
	}
}
