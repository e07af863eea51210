// Package amba is a typed client for the Allen Brain Atlas RMA query service.
//
// A client owns exactly one httpclient.Transport for its lifetime and releases it
// on Close. Clients hold no mutable state after construction, so a client is safe
// for concurrent use exactly when its transport is; the bundled RestyTransport is.
package amba

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/amba-hq/amba/pkg/domain"
	"github.com/amba-hq/amba/pkg/httpclient"
)

// GeneClient is the query surface every API version exposes.
type GeneClient interface {
	GetGeneByID(ctx context.Context, id int) (domain.Gene, error)
	GetGeneByAcronym(ctx context.Context, acronym string) (domain.Gene, error)
	Ping(ctx context.Context) error
	Version() string
	BaseURL() string
	Close() error
}

// queryDialect pins the endpoint conventions of one API version.
type queryDialect interface {
	version() string
	geneByID(id int) string
	geneByAcronym(escapedAcronym string) string
	ping() string
}

// client is shared by every version client; it is only reachable through one.
type client struct {
	baseURL   string
	transport httpclient.Transport
	dialect   queryDialect
	headers   map[string]string
	log       Logger

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

func newClient(baseURL string, transport httpclient.Transport, dialect queryDialect, opts []Option) (*client, error) {
	const op = "new client"

	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, usageError(op, err)
	}
	if transport == nil {
		return nil, usageError(op, ErrNilTransport)
	}

	c := &client{
		baseURL:   normalized,
		transport: transport,
		dialect:   dialect,
		headers:   map[string]string{"Accept": "application/json"},
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q needs an http(s) scheme and a host", ErrMalformedBaseURL, raw)
	}
	// a bare "?" or "#" parses to empty fields but still breaks every joined path
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" || strings.Contains(raw, "#") {
		return "", fmt.Errorf("%w: %q must not carry a query or fragment", ErrMalformedBaseURL, raw)
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}

// BaseURL returns the normalized root endpoint, always ending in a slash.
func (c *client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Version returns the API version name the client speaks.
func (c *client) Version() string {
	if c == nil || c.dialect == nil {
		return ""
	}
	return c.dialect.version()
}

// GetGeneByID fetches the gene with the given service-assigned id.
func (c *client) GetGeneByID(ctx context.Context, id int) (domain.Gene, error) {
	const op = "get gene by id"
	if err := c.usable(op); err != nil {
		return domain.Gene{}, err
	}
	return c.fetchGene(ctx, op, c.dialect.geneByID(id))
}

// GetGeneByAcronym fetches the gene with the given short code. The acronym is
// query-escaped before it is placed in the url.
func (c *client) GetGeneByAcronym(ctx context.Context, acronym string) (domain.Gene, error) {
	const op = "get gene by acronym"
	if err := c.usable(op); err != nil {
		return domain.Gene{}, err
	}
	acronym = strings.TrimSpace(acronym)
	if acronym == "" {
		return domain.Gene{}, usageError(op, ErrEmptyAcronym)
	}
	return c.fetchGene(ctx, op, c.dialect.geneByAcronym(url.QueryEscape(acronym)))
}

// Ping checks that the service answers queries.
func (c *client) Ping(ctx context.Context) error {
	const op = "ping"
	if err := c.usable(op); err != nil {
		return err
	}
	resp, err := c.get(ctx, op, c.dialect.ping())
	if err != nil {
		return err
	}
	c.log.DebugObj("ping succeeded", "ping", map[string]any{
		"base_url": c.baseURL,
		"status":   resp.StatusCode,
	})
	return nil
}

// Close releases the owned transport. Later calls return the first result.
func (c *client) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if closer, ok := c.transport.(io.Closer); ok {
			c.closeErr = closer.Close()
		}
	})
	return c.closeErr
}

func (c *client) usable(op string) error {
	if c == nil || c.transport == nil || c.dialect == nil {
		return usageError(op, ErrNotConstructed)
	}
	if c.closed.Load() {
		return usageError(op, ErrClientClosed)
	}
	return nil
}

// get issues one GET and classifies anything other than 2xx as a transport failure.
func (c *client) get(ctx context.Context, op, path string) (*httpclient.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.baseURL + strings.TrimPrefix(path, "/")

	resp, err := c.transport.Request(ctx, httpclient.MethodGet, target, "", c.headers)
	if err != nil {
		if errors.Is(err, httpclient.ErrInvalidRequest) {
			return nil, usageError(op, err)
		}
		return nil, transportError(op, 0, err)
	}
	if resp == nil {
		return nil, transportError(op, 0, errors.New("transport returned no response"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WarnObj("service returned non-success status", "response", map[string]any{
			"op":     op,
			"url":    target,
			"status": resp.StatusCode,
		})
		return nil, transportError(op, resp.StatusCode, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode))
	}
	return resp, nil
}

func (c *client) fetchGene(ctx context.Context, op, path string) (domain.Gene, error) {
	resp, err := c.get(ctx, op, path)
	if err != nil {
		return domain.Gene{}, err
	}

	m, err := decodeGenes(resp.Body)
	if err != nil {
		return domain.Gene{}, parseError(op, resp.StatusCode, err)
	}
	if m.records > 1 || m.totalRows > 1 {
		// the first record is authoritative
		c.log.DebugObj("query matched several records", "query_result", map[string]any{
			"op":         op,
			"records":    m.records,
			"total_rows": m.totalRows,
			"kept_id":    m.gene.ID(),
		})
	}
	return m.gene, nil
}
