package preview

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/law-makers/linkclean/pkg/models"
)

// User-facing messages returned alongside a preview result
const (
	MsgNotHTML       = "Content is not HTML, cannot generate rich preview."
	MsgNoMetadata    = "No metadata found for preview."
	MsgTimeout       = "Fetching preview timed out."
	MsgNetworkError  = "Could not fetch link preview. The website might be inaccessible or block requests."
	msgStatusFailure = "Failed to fetch URL: Status %d"
)

// Error carries a preview failure with its classification. It never escapes
// Fetch as a Go error; Fetch folds it into models.PreviewResult.
type Error struct {
	Kind       models.ErrorKind
	Message    string
	StatusCode int
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error by kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func statusError(code int) *Error {
	return &Error{
		Kind:       models.ErrorKindFetchFailed,
		Message:    fmt.Sprintf(msgStatusFailure, code),
		StatusCode: code,
	}
}

// classifyFetchError maps a transport or read failure to a timeout or a
// generic network error
func classifyFetchError(err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: models.ErrorKindTimeout, Message: MsgTimeout, Underlying: err}
	}
	return &Error{Kind: models.ErrorKindNetworkError, Message: MsgNetworkError, Underlying: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
