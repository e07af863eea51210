package sinks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amba-hq/amba/pkg/domain"
	"github.com/amba-hq/amba/pkg/httpclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func testEvent() Event {
	return NewEvent("18376", "id", domain.NewGene(18376, "prodynorphin", "Pdyn"))
}

func TestSQSSinkPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	s := &sqsSink{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      httpclient.NopLogger{},
	}

	if err := s.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["gene_id"]
	if !ok || aws.ToString(attr.StringValue) != "18376" {
		t.Fatalf("gene_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if got := aws.ToString(client.input.MessageAttributes["acronym"].StringValue); got != "Pdyn" {
		t.Fatalf("acronym attribute = %q", got)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"name":"prodynorphin"`) {
		t.Fatalf("MessageBody missing gene: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSSinkPublishError(t *testing.T) {
	s := &sqsSink{
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      httpclient.NopLogger{},
	}
	if err := s.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSNSSinkPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	s := &snsSink{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      httpclient.NopLogger{},
	}

	if err := s.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if got := aws.ToString(client.input.MessageAttributes["gene_id"].StringValue); got != "18376" {
		t.Fatalf("gene_id attribute = %q", got)
	}
	if !strings.Contains(aws.ToString(client.input.Message), `"acronym":"Pdyn"`) {
		t.Fatalf("Message missing gene: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSSinkPublishError(t *testing.T) {
	s := &snsSink{
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      httpclient.NopLogger{},
	}
	if err := s.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestEmptyAttributeValuesArePlaceholders(t *testing.T) {
	client := &fakeSQSClient{}
	s := &sqsSink{queueURL: "q", client: client, log: httpclient.NopLogger{}}

	if err := s.Publish(context.Background(), NewEvent("x", "id", domain.NewGene(1, "", ""))); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.MessageAttributes["acronym"].StringValue); got != "-" {
		t.Fatalf("empty acronym attribute = %q", got)
	}
}

type warnRecorder struct {
	httpclient.NopLogger
	warns []string
}

func (w *warnRecorder) WarnObj(msg, _ string, _ interface{}) { w.warns = append(w.warns, msg) }

func TestSinkFailuresAreLoggedAsWarnings(t *testing.T) {
	log := &warnRecorder{}
	s := &snsSink{
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      log,
	}
	if err := s.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
	if len(log.warns) != 1 || log.warns[0] != "sns sink publish failed" {
		t.Fatalf("unexpected warnings %v", log.warns)
	}
}

func TestEnsureLoggerDefaultsToNop(t *testing.T) {
	if _, ok := ensureLogger(nil).(httpclient.NopLogger); !ok {
		t.Fatalf("expected NopLogger for nil logger")
	}
}
