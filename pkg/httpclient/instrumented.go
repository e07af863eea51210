package httpclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedTransport records request counts and latency in Prometheus collectors.
type InstrumentedTransport struct {
	next     Transport
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewInstrumentedTransport wraps next and registers its collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewInstrumentedTransport(next Transport, reg prometheus.Registerer) (*InstrumentedTransport, error) {
	if next == nil {
		return nil, fmt.Errorf("instrumented transport requires a transport")
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amba",
		Subsystem: "transport",
		Name:      "requests_total",
		Help:      "HTTP round trips by method and status class.",
	}, []string{"method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "amba",
		Subsystem: "transport",
		Name:      "request_duration_seconds",
		Help:      "HTTP round trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	if err := reg.Register(requests); err != nil {
		return nil, fmt.Errorf("register requests counter: %w", err)
	}
	if err := reg.Register(latency); err != nil {
		reg.Unregister(requests)
		return nil, fmt.Errorf("register latency histogram: %w", err)
	}

	return &InstrumentedTransport{next: next, requests: requests, latency: latency}, nil
}

// Request forwards to the wrapped transport.
func (t *InstrumentedTransport) Request(ctx context.Context, method Method, url, body string, headers map[string]string) (*Response, error) {
	start := time.Now()
	resp, err := t.next.Request(ctx, method, url, body, headers)
	t.latency.WithLabelValues(method.String()).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil && resp != nil {
		status = statusClass(resp.StatusCode)
	}
	t.requests.WithLabelValues(method.String(), status).Inc()
	return resp, err
}

// Close closes the wrapped transport when it holds resources.
func (t *InstrumentedTransport) Close() error {
	return closeTransport(t.next)
}

func statusClass(code int) string {
	if code < 100 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}
