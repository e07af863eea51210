package sinks

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/amba-hq/amba/pkg/domain"
)

func TestPubSubSinkPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "genes"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	s, err := newPubSubSink(ctx, SinkConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubConfig{ProjectID: "test-project", Topic: "genes"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubSink: %v", err)
	}

	evt := NewEvent("Pdyn", "acronym", domain.NewGene(18376, "prodynorphin", "Pdyn"))
	if err := s.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if got := msgs[0].Attributes["acronym"]; got != "Pdyn" {
		t.Fatalf("acronym attribute = %q", got)
	}
}
