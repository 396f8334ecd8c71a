// Package notify publishes crash events to Pub/Sub so alerting pipelines can
// subscribe to classified failures without polling the diagnostics API.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/ledger"
)

// CrashEvent is the wire shape published per recorded crash. The full record
// stays in the ledger; the event carries what an alerting rule needs.
type CrashEvent struct {
	RecordID       string `json:"record_id"`
	Classification string `json:"classification"`
	ComponentID    string `json:"component_id,omitempty"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
}

// PublisherConfig holds configuration for the crash event publisher.
type PublisherConfig struct {
	ProjectID string
	TopicID   string
	Logger    zerolog.Logger
}

// Publisher sends crash events to a Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicID   string
	logger    zerolog.Logger
}

// NewPublisher creates a crash event publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicID),
		topicID:   cfg.TopicID,
		logger:    cfg.Logger,
	}, nil
}

// PublishCrash implements ledger.EventPublisher.
func (p *Publisher) PublishCrash(ctx context.Context, record ledger.CrashRecord) error {
	event := CrashEvent{
		RecordID:       record.ID,
		Classification: string(record.Classification),
		ComponentID:    record.ComponentID,
		Message:        record.Message,
		Timestamp:      record.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal crash event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish crash event: %w", err)
	}

	p.logger.Debug().
		Str("record_id", record.ID).
		Str("topic", p.topicID).
		Msg("crash event published")
	return nil
}

// Close stops the publisher and releases the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

var _ ledger.EventPublisher = (*Publisher)(nil)
