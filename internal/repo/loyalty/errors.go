package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is a gateway failure with a message safe to show in the chat.
type Error struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("loyalty backend: %s: %v", e.Message, e.cause)
	}
	return fmt.Sprintf("loyalty backend: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage extracts the presentable message from a gateway error,
// falling back to a generic line for anything else.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return "Something went wrong. Please try again."
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Message: "The request took too long. Please try again.", cause: err}
	}
	return &Error{Message: "Cannot reach the server. Check your connection.", cause: err}
}

func statusError(resp *http.Response) error {
	var env envelope[json.RawMessage]
	_ = json.NewDecoder(resp.Body).Decode(&env)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		msg := env.Message
		if msg == "" {
			msg = "Invalid request"
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	case http.StatusNotFound:
		return &Error{StatusCode: resp.StatusCode, Message: "Resource not found"}
	case http.StatusInternalServerError:
		msg := env.Message
		if msg == "" {
			msg = "Internal server error"
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	default:
		msg := env.Message
		if msg == "" {
			msg = "Unknown"
		}
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, msg),
		}
	}
}
