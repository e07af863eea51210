package amba

import "strings"

// Option configures a client during construction.
type Option func(*client)

// WithLogger attaches a logger. A nil logger keeps the no-op default.
func WithLogger(log Logger) Option {
	return func(c *client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHeaders adds headers sent on every query. Blank keys or values are skipped.
func WithHeaders(headers map[string]string) Option {
	return func(c *client) {
		for k, v := range headers {
			if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
				continue
			}
			c.headers[k] = v
		}
	}
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}
