package httpclient

import (
	"context"
	"errors"
)

// Method is the closed set of HTTP verbs a Transport understands.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete

	methodCount // keep last
)

var methodNames = [...]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPut:    "PUT",
	MethodDelete: "DELETE",
}

// String returns the wire name of the verb.
func (m Method) String() string {
	if !m.Valid() {
		return "UNKNOWN"
	}
	return methodNames[m]
}

// Valid reports whether m is one of the defined verbs.
func (m Method) Valid() bool {
	return m >= 0 && m < methodCount
}

// Synthetic status codes reported when a call never produced a server response.
const (
	StatusTimeout     = 408
	StatusUnreachable = -1
)

// ErrInvalidRequest is returned before any network activity for an unknown verb or empty url.
var ErrInvalidRequest = errors.New("invalid transport request")

// Response is the engine-independent result of one round trip.
type Response struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// Transport abstracts HTTP calls so callers can inject mocks or different engines.
//
// An empty body means no payload. Header keys are sent in the caller's case,
// except User-Agent, which is always canonical so a caller value replaces the
// engine default instead of joining it. Network failures are reported as a
// Response with StatusTimeout or StatusUnreachable; the returned error is
// reserved for invalid requests and caller cancellation.
type Transport interface {
	Request(ctx context.Context, method Method, url, body string, headers map[string]string) (*Response, error)
}

// Logger defines the logging surface transports rely on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}

func validateRequest(method Method, url string) error {
	if !method.Valid() {
		return errors.Join(ErrInvalidRequest, errors.New("unknown method "+method.String()))
	}
	if url == "" {
		return errors.Join(ErrInvalidRequest, errors.New("url is empty"))
	}
	return nil
}
