package httpclient

import (
	"context"
	"io"
	"time"
)

// LoggingTransport logs each round trip at debug level. Header values are never logged.
type LoggingTransport struct {
	next Transport
	log  Logger
}

// NewLoggingTransport wraps next with request/response logging.
func NewLoggingTransport(next Transport, log Logger) *LoggingTransport {
	return &LoggingTransport{next: next, log: ensureLogger(log)}
}

// Request forwards to the wrapped transport.
func (l *LoggingTransport) Request(ctx context.Context, method Method, url, body string, headers map[string]string) (*Response, error) {
	start := time.Now()
	resp, err := l.next.Request(ctx, method, url, body, headers)

	entry := map[string]any{
		"method":       method.String(),
		"url":          url,
		"body_bytes":   len(body),
		"header_count": len(headers),
		"elapsed_ms":   time.Since(start).Milliseconds(),
	}
	if err != nil || resp == nil {
		if err != nil {
			entry["error"] = err.Error()
		}
		l.log.DebugObj("http request failed", "http_request", entry)
		return resp, err
	}
	entry["status"] = resp.StatusCode
	entry["response_bytes"] = len(resp.Body)
	l.log.DebugObj("http request completed", "http_request", entry)
	return resp, nil
}

// Close closes the wrapped transport when it holds resources.
func (l *LoggingTransport) Close() error {
	return closeTransport(l.next)
}

func closeTransport(t Transport) error {
	if c, ok := t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
