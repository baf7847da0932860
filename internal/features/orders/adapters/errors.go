package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrRateLimitExceeded is returned when the store answers 429. The client never retries.
var ErrRateLimitExceeded = errors.New("Api request limit reached, please wait a few seconds before trying again.")

var errEmptyDate = errors.New("empty date string")

// DateParseError is returned when a start date string is not a recognizable date/time.
type DateParseError struct {
	// Input is the rejected string.
	Input string
	// Err is the underlying parser error.
	Err error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unable to parse start date %q: %v", e.Input, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// APIError is returned for any response other than 200 and 429.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Reason is the status line's reason phrase, e.g. "Not Found".
	Reason string
	// Message is the "message" field of the error body, if any.
	Message string
	// Details is the "details" field of the error body, if any.
	Details string

	msg string
}

func (e *APIError) Error() string {
	return e.msg
}

// errorBody is the store's error payload. Pointers tell absent keys from empty ones.
type errorBody struct {
	Message *string `json:"message"`
	Details *string `json:"details"`
}

// newAPIError composes the error message from the reason phrase and the error body.
// The details suffix is only added when a non-empty message was present: a body
// carrying details alone yields the bare "Unknown error occured <reason>".
func newAPIError(statusCode int, reason string, body errorBody) *APIError {
	e := &APIError{
		StatusCode: statusCode,
		Reason:     reason,
		msg:        "Unknown error occured " + reason,
	}

	if body.Message != nil {
		e.Message = *body.Message
	}
	if body.Details != nil {
		e.Details = *body.Details
	}

	if e.Message != "" {
		e.msg += e.Message
		if body.Details != nil {
			e.msg += ": " + e.Details
		}
	}

	return e
}

// reasonPhrase extracts the reason from a status line such as "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}
