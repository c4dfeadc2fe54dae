package cce

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure reported by the client
type Kind int

const (
	KindUnknown Kind = iota
	KindNoResults
	KindNotFound
	KindInvalidRequest
	KindQueued
	KindProtocol
	KindUnclassifiable
	KindTimeout
	KindAlreadyConsumed
	KindTransport
	KindAuthentication
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindNoResults:       "no results",
	KindNotFound:        "not found",
	KindInvalidRequest:  "invalid request",
	KindQueued:          "queued",
	KindProtocol:        "protocol",
	KindUnclassifiable:  "unclassifiable",
	KindTimeout:         "timeout",
	KindAlreadyConsumed: "already consumed",
	KindTransport:       "transport",
	KindAuthentication:  "authentication",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Common errors
var (
	ErrUnknown         = errors.New("unexpected jnet error")
	ErrNoResults       = errors.New("no results")
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrQueued          = errors.New("request is still queued")
	ErrProtocol        = errors.New("unexpected response structure")
	ErrUnclassifiable  = errors.New("unclassifiable queue record")
	ErrTimeout         = errors.New("timed out waiting for results")
	ErrAlreadyConsumed = errors.New("file already consumed")
	ErrTransport       = errors.New("transport failure")
	ErrAuthentication  = errors.New("authentication failure")
)

var kindSentinels = map[Kind]error{
	KindUnknown:         ErrUnknown,
	KindNoResults:       ErrNoResults,
	KindNotFound:        ErrNotFound,
	KindInvalidRequest:  ErrInvalidRequest,
	KindQueued:          ErrQueued,
	KindProtocol:        ErrProtocol,
	KindUnclassifiable:  ErrUnclassifiable,
	KindTimeout:         ErrTimeout,
	KindAlreadyConsumed: ErrAlreadyConsumed,
	KindTransport:       ErrTransport,
	KindAuthentication:  ErrAuthentication,
}

// Error is the structured failure returned by every client operation.
// RawData holds the parsed reply (or the offending value) that led to it.
type Error struct {
	Kind     Kind
	Message  string
	RawData  any
	Response *http.Response
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// StatusCode returns the HTTP status of the failed exchange, or 0
func (e *Error) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// IsNotFound returns true if the backend resolved the request as absent
func (e *Error) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsRetryable returns true if polling again later may produce data
func (e *Error) IsRetryable() bool {
	return e.Kind == KindQueued || e.Kind == KindNoResults
}

func newError(kind Kind, raw any, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), RawData: raw}
}

// KindOf extracts the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
