// Package extraction holds the outcome type shared by every pipeline tool.
//
// A tool never returns a Go error to its caller. It returns a Result that is
// either text or a typed Error, and String renders the "Error:"-prefixed line
// that reasoning agents receive as context.
package extraction

import (
	"fmt"
	"strings"
)

// ErrorPrefix starts every rendered tool failure.
const ErrorPrefix = "Error:"

// TruncationMarker is appended to text that was cut to fit a size budget.
const TruncationMarker = "\n\n[Content truncated due to length...]"

// Kind classifies tool failures.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindDecode     Kind = "decode"
	KindEmpty      Kind = "empty"
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindHTTPStatus Kind = "http_status"
	KindInvalid    Kind = "invalid_input"
	KindUnknown    Kind = "unknown"
)

// Error is a recoverable tool failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result is the outcome of a single tool call.
type Result struct {
	Text      string
	Truncated bool
	Err       *Error
}

// Success wraps extracted text.
func Success(text string, truncated bool) Result {
	return Result{Text: text, Truncated: truncated}
}

// Failure builds a failed result. The message is rendered after ErrorPrefix.
func Failure(kind Kind, cause error, format string, args ...any) Result {
	return Result{Err: &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}}
}

// Failed reports whether the tool call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// String renders the result in the tool wire format. A failure always starts
// with ErrorPrefix and a success is never empty.
func (r Result) String() string {
	if r.Err != nil {
		return ErrorPrefix + " " + strings.TrimSpace(r.Err.Message)
	}
	if strings.TrimSpace(r.Text) == "" {
		return ErrorPrefix + " tool returned no content."
	}
	return r.Text
}

// HasErrorPrefix reports whether s is a rendered tool failure.
func HasErrorPrefix(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), ErrorPrefix)
}

// Truncate caps text at limit runes and appends TruncationMarker when it cuts.
// A non-positive limit disables the cap.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + TruncationMarker, true
}
