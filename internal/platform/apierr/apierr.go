// Package apierr attaches an HTTP status and a stable machine code to an
// error so handlers translate failures in one place.
package apierr

import (
	"errors"
	"fmt"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Rule maps every error accepted by Match to Status and Code.
type Rule struct {
	Match  func(error) bool
	Status int
	Code   string
}

// Is matches errors wrapping target.
func Is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// As matches errors wrapping a value of type T.
func As[T error]() func(error) bool {
	return func(err error) bool {
		var t T
		return errors.As(err, &t)
	}
}

// Table is an ordered rule list; the first match wins.
type Table []Rule

// Translate wraps err with the first matching rule. Errors no rule matches,
// and errors that already carry a status, come back unchanged.
func (t Table) Translate(err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	for _, r := range t {
		if r.Match != nil && r.Match(err) {
			return New(r.Status, r.Code, err)
		}
	}
	return err
}
