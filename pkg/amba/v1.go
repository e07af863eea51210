package amba

import (
	"fmt"
	"strings"

	"github.com/amba-hq/amba/pkg/httpclient"
)

const (
	VersionV1 = "v1"

	// DefaultBaseURL is the public RMA endpoint the V1 templates target.
	DefaultBaseURL = "https://api.brain-map.org/api/v2/"
)

// ClientV1 speaks the V1 RMA filter syntax. Build it with NewClientV1; the zero
// value rejects every call.
type ClientV1 struct {
	*client
}

// NewClientV1 takes ownership of transport. Close the client to release it.
func NewClientV1(baseURL string, transport httpclient.Transport, opts ...Option) (*ClientV1, error) {
	c, err := newClient(baseURL, transport, v1Dialect{}, opts)
	if err != nil {
		return nil, err
	}
	return &ClientV1{client: c}, nil
}

type v1Dialect struct{}

func (v1Dialect) version() string { return VersionV1 }

func (v1Dialect) geneByID(id int) string {
	return fmt.Sprintf("data/Gene/query.json?criteria=[id$eq%d]", id)
}

func (v1Dialect) geneByAcronym(escapedAcronym string) string {
	return fmt.Sprintf("data/Gene/query.json?criteria=[acronym$eq'%s']", escapedAcronym)
}

func (v1Dialect) ping() string {
	return "data/Gene/query.json?num_rows=1"
}

// New builds the client for the named API version. An empty version means V1.
func New(version, baseURL string, transport httpclient.Transport, opts ...Option) (GeneClient, error) {
	switch strings.ToLower(strings.TrimSpace(version)) {
	case "", VersionV1:
		c, err := NewClientV1(baseURL, transport, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, usageError("new client", fmt.Errorf("%w %q", ErrUnknownVersion, version))
	}
}
