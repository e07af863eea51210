package amba

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/amba-hq/amba/pkg/domain"
)

// rmaEnvelope is the wrapper every RMA query response is returned in.
type rmaEnvelope struct {
	Success   *bool           `json:"success"`
	TotalRows int             `json:"total_rows"`
	Msg       json.RawMessage `json:"msg"`
}

type rmaGene struct {
	ID      *int    `json:"id"`
	Name    *string `json:"name"`
	Acronym *string `json:"acronym"`
}

// geneMatch is the outcome of one decoded query response.
type geneMatch struct {
	gene      domain.Gene
	records   int // records in this page
	totalRows int // rows the service reports for the whole query
}

// decodeGenes parses body and keeps the first record.
func decodeGenes(body string) (geneMatch, error) {
	raw := bytes.TrimSpace([]byte(body))
	if len(raw) == 0 {
		return geneMatch{}, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	if raw[0] != '{' {
		return geneMatch{}, fmt.Errorf("%w: %s", ErrMalformedPayload, describeNonJSON(body))
	}

	var env rmaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return geneMatch{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	msg := bytes.TrimSpace(env.Msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return geneMatch{}, fmt.Errorf("%w: missing msg field", ErrMalformedPayload)
	}
	if msg[0] == '"' || (env.Success != nil && !*env.Success) {
		return geneMatch{}, fmt.Errorf("%w: %s", ErrServiceRejected, rejectionText(msg))
	}

	var records []rmaGene
	if err := json.Unmarshal(msg, &records); err != nil {
		return geneMatch{}, fmt.Errorf("%w: msg is not a record list: %v", ErrMalformedPayload, err)
	}
	if len(records) == 0 {
		return geneMatch{}, ErrNoRecords
	}

	first := records[0]
	if first.ID == nil || first.Name == nil || first.Acronym == nil {
		return geneMatch{records: len(records), totalRows: env.TotalRows}, ErrMalformedRecord
	}
	return geneMatch{
		gene:      domain.NewGene(*first.ID, *first.Name, *first.Acronym),
		records:   len(records),
		totalRows: env.TotalRows,
	}, nil
}

func rejectionText(msg []byte) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil && s != "" {
		return s
	}
	return snippet(string(msg))
}

// describeNonJSON summarizes a body that is not json; html error pages are reduced to their title.
func describeNonJSON(body string) string {
	if strings.Contains(strings.ToLower(body), "<html") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return "html page: " + title
			}
		}
	}
	return snippet(body)
}

func snippet(s string) string {
	const maxLen = 256
	s = strings.TrimSpace(s)
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
