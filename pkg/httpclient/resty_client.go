package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// restyVerbs maps every Method onto the verb name resty executes.
var restyVerbs = map[Method]string{
	MethodGet:    resty.MethodGet,
	MethodPost:   resty.MethodPost,
	MethodPut:    resty.MethodPut,
	MethodDelete: resty.MethodDelete,
}

func init() {
	for m := Method(0); m < methodCount; m++ {
		if _, ok := restyVerbs[m]; !ok {
			panic(fmt.Sprintf("httpclient: method %d has no resty mapping", m))
		}
	}
}

const defaultTimeout = 15 * time.Second

// RestyOption configures a RestyTransport.
type RestyOption func(*RestyTransport)

// WithTimeout bounds each round trip. Values <= 0 keep the default.
func WithTimeout(d time.Duration) RestyOption {
	return func(r *RestyTransport) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent sent when the caller supplies none.
func WithUserAgent(ua string) RestyOption {
	return func(r *RestyTransport) { r.userAgent = ua }
}

// WithRoundTripper replaces the net/http transport resty sends through.
func WithRoundTripper(rt http.RoundTripper) RestyOption {
	return func(r *RestyTransport) { r.roundTripper = rt }
}

// WithLogger attaches a logger for failure diagnostics.
func WithLogger(log Logger) RestyOption {
	return func(r *RestyTransport) { r.log = ensureLogger(log) }
}

// RestyTransport adapts resty.Client to the Transport interface.
// It is safe for concurrent use.
type RestyTransport struct {
	client       *resty.Client
	timeout      time.Duration
	userAgent    string
	roundTripper http.RoundTripper
	log          Logger
	closeOnce    sync.Once
}

// NewRestyTransport creates a RestyTransport with the given options applied.
func NewRestyTransport(opts ...RestyOption) *RestyTransport {
	r := &RestyTransport{
		timeout: defaultTimeout,
		log:     NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.client = newRestyBaseClient(r.timeout)
	if r.roundTripper != nil {
		r.client.SetTransport(r.roundTripper)
	}
	if r.userAgent != "" {
		r.client.SetHeader("User-Agent", r.userAgent)
	}
	return r
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing the raw engine.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Request performs one HTTP round trip.
func (r *RestyTransport) Request(ctx context.Context, method Method, url, body string, headers map[string]string) (*Response, error) {
	if err := validateRequest(method, url); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req := r.client.R().SetContext(ctx)
	for k, v := range headers {
		// User-Agent is the one key stored canonically: resty looks it up with
		// Header.Get and would otherwise add its own default next to the caller's.
		if strings.EqualFold(k, "User-Agent") {
			req.Header.Set("User-Agent", v)
			continue
		}
		// direct assignment keeps the caller's key case
		req.Header[k] = []string{v}
	}
	if body != "" {
		req.SetBody(body)
	}

	resp, err := req.Execute(restyVerbs[method], url)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", method, url, ctxErr)
		}
		status := classifyNetworkError(err)
		r.log.WarnObj("http round trip failed", "transport_error", map[string]any{
			"method": method.String(),
			"url":    url,
			"status": status,
			"error":  err.Error(),
		})
		return &Response{StatusCode: status, Body: err.Error(), Headers: map[string]string{}}, nil
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       string(resp.Body()),
		Headers:    flattenHeaders(resp.Header()),
	}, nil
}

// Close releases idle connections held by the engine.
func (r *RestyTransport) Close() error {
	r.closeOnce.Do(func() {
		if hc := r.client.GetClient(); hc != nil {
			hc.CloseIdleConnections()
		}
	})
	return nil
}

func classifyNetworkError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	return StatusUnreachable
}

// flattenHeaders keeps the last value of repeated headers.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) == 0 {
			continue
		}
		out[k] = vs[len(vs)-1]
	}
	return out
}
