package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobcard-service/shared/rabbitmq"
)

// Publisher delivers events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type messageSender interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// RabbitPublisher publishes events to the topic exchange
type RabbitPublisher struct {
	sender messageSender
	logger *slog.Logger
}

// NewRabbitPublisher creates a new RabbitPublisher
func NewRabbitPublisher(sender messageSender, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{sender: sender, logger: logger}
}

func (p *RabbitPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.sender.PublishWithRetry(ctx, rabbitmq.Message{
		RoutingKey:  evt.RoutingKey(),
		MessageID:   evt.ID,
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}

	p.logger.Debug("Event published",
		slog.String("event_id", evt.ID),
		slog.String("type", string(evt.Type)),
		slog.String("job_id", evt.JobID),
	)
	return nil
}

// NopPublisher drops every event. Used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
