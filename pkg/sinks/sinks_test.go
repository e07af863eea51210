package sinks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "sinks.yaml", `
sinks:
  - id: hook1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: hook2
    type: HTTP
    http:
      url: " https://example.com/2 "
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "hook2" {
		t.Fatalf("expected only hook2 enabled, got %#v", enabled)
	}
	cfg := enabled[0]
	if cfg.Type != TypeHTTP {
		t.Fatalf("type not normalized: %q", cfg.Type)
	}
	if cfg.HTTP.URL != "https://example.com/2" || cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", cfg.HTTP)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 sinks in registry")
	}
	if _, ok := reg.ByID("hook1"); !ok {
		t.Fatalf("ByID(hook1) not found")
	}
}

func TestLoadRegistryAWSInlineFields(t *testing.T) {
	path := writeFile(t, "sinks.yml", `
sinks:
  - id: queue
    type: sqs
    sqs:
      region: eu-west-1
      endpoint: http://localhost:4566
      uri: https://sqs.eu-west-1.amazonaws.com/1/genes
  - id: topic
    type: sns
    sns:
      region: eu-west-1
      topic_arn: arn:aws:sns:eu-west-1:1:genes
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	q, _ := reg.ByID("queue")
	if q.SQS.Region != "eu-west-1" || q.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("sqs aws fields not decoded: %#v", q.SQS)
	}
	topic, _ := reg.ByID("topic")
	if topic.SNS.TopicARN != "arn:aws:sns:eu-west-1:1:genes" {
		t.Fatalf("sns topic not decoded: %#v", topic.SNS)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "sinks.json", `{"sinks":[{"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"genes"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("ps")
	if !ok || cfg.PubSub.Topic != "genes" {
		t.Fatalf("pubsub sink not decoded: %#v", cfg)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	path := writeFile(t, "sinks.yaml", `
sinks:
  - id: a
    type: http
    http: {url: https://example.com}
  - id: a
    type: http
    http: {url: https://example.com}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	path := writeFile(t, "sinks.yaml", "sinks: []\n")
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for empty sinks list")
	}
	if _, err := LoadRegistry("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestValidateSinkConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  SinkConfig
	}{
		{"missing id", SinkConfig{Type: TypeHTTP}},
		{"missing type", SinkConfig{ID: "x"}},
		{"missing http", SinkConfig{ID: "h", Type: TypeHTTP}},
		{"missing sqs region", SinkConfig{ID: "q", Type: TypeSQS, SQS: &SQSConfig{QueueURL: "u"}}},
		{"missing sns topic", SinkConfig{ID: "s", Type: TypeSNS, SNS: &SNSConfig{AWSConfig: AWSConfig{Region: "r"}}}},
		{"missing pubsub topic", SinkConfig{ID: "p", Type: TypePubSub, PubSub: &PubSubConfig{ProjectID: "p"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateSinkConfig(tc.cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSanitizeHeadersDropsBlank(t *testing.T) {
	got := sanitizeHeaders(map[string]string{" X-A ": " 1 ", "": "v", "X-B": " "})
	if len(got) != 1 || got["X-A"] != "1" {
		t.Fatalf("unexpected headers: %#v", got)
	}
	if sanitizeHeaders(map[string]string{"": ""}) != nil {
		t.Fatalf("expected nil for all-blank headers")
	}
}
