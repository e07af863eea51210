package amba

import (
	"errors"
	"fmt"
)

// Kind separates failures the caller caused from failures of the wire and of the payload.
type Kind string

const (
	KindUsage     Kind = "usage"
	KindTransport Kind = "transport"
	KindParse     Kind = "parse"
)

// Status is the coarse classification of a service status code.
type Status int

const (
	StatusOK           Status = 200
	StatusUnauthorized Status = 401
	StatusNotFound     Status = 404
	StatusTimeout      Status = 408
	StatusServerError  Status = 500
	StatusUnknown      Status = -1
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusNotFound:
		return "not_found"
	case StatusTimeout:
		return "timeout"
	case StatusServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps a raw status code onto a Status.
func ClassifyStatus(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusOK
	case code == 401:
		return StatusUnauthorized
	case code == 404:
		return StatusNotFound
	case code == 408:
		return StatusTimeout
	case code >= 500 && code < 600:
		return StatusServerError
	default:
		return StatusUnknown
	}
}

var (
	ErrEmptyBaseURL     = errors.New("base url is empty")
	ErrMalformedBaseURL = errors.New("base url is malformed")
	ErrNilTransport     = errors.New("transport is nil")
	ErrEmptyAcronym     = errors.New("acronym is empty")
	ErrUnknownVersion   = errors.New("unknown api version")
	ErrClientClosed     = errors.New("client is closed")
	ErrNotConstructed   = errors.New("client was not constructed with a version constructor")

	ErrUnexpectedStatus = errors.New("unexpected response status")

	ErrNoRecords        = errors.New("no matching records")
	ErrServiceRejected  = errors.New("service rejected the query")
	ErrMalformedRecord  = errors.New("record is missing required fields")
	ErrMalformedPayload = errors.New("response body is not the expected json")
)

// Error is returned by every client operation.
type Error struct {
	Op         string
	Kind       Kind
	Status     Status
	StatusCode int // 0 when no response was involved
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Kind == KindTransport {
		base += fmt.Sprintf(" [%s, HTTP %d]", e.Status, e.StatusCode)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// StatusOf returns the status classification attached to err, or StatusUnknown.
func StatusOf(err error) Status {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind == KindTransport {
		return ae.Status
	}
	return StatusUnknown
}

func usageError(op string, err error) error {
	return &Error{Op: op, Kind: KindUsage, Status: StatusUnknown, Err: err}
}

func parseError(op string, code int, err error) error {
	return &Error{Op: op, Kind: KindParse, Status: StatusOK, StatusCode: code, Err: err}
}

func transportError(op string, code int, err error) error {
	return &Error{Op: op, Kind: KindTransport, Status: ClassifyStatus(code), StatusCode: code, Err: err}
}
