package sinks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/amba-hq/amba/pkg/domain"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event represents the payload published downstream after a successful lookup.
type Event struct {
	ID         string      `json:"id"`
	Query      string      `json:"query"`
	Source     string      `json:"source"`
	Gene       domain.Gene `json:"gene"`
	ResolvedAt time.Time   `json:"resolved_at"`
}

// NewEvent constructs an Event for the given query + gene.
func NewEvent(query, source string, gene domain.Gene) Event {
	return Event{
		ID:         uuid.NewString(),
		Query:      query,
		Source:     source,
		Gene:       gene,
		ResolvedAt: time.Now().UTC(),
	}
}

func marshalEvent(evt Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return payload, nil
}

func eventAttributes(evt Event) map[string]string {
	return map[string]string{
		"event_id": evt.ID,
		"gene_id":  strconv.Itoa(evt.Gene.ID()),
		"acronym":  evt.Gene.Acronym(),
	}
}
