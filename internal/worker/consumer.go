package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobcard-service/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer sets up RabbitMQ consumer with QoS and returns delivery channel
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if w.prefetchCount > 0 {
		if err := w.source.Qos(w.prefetchCount); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
		w.logger.Info("RabbitMQ QoS configured",
			slog.Int("prefetch_count", w.prefetchCount),
		)
	}

	deliveries, err := w.source.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
	)
	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool.
// It reports whether it stopped because the delivery channel closed.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) bool {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return false

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return true
			}

			evt, err := events.Decode(delivery.Body)
			if err != nil {
				w.logger.Error("Failed to decode event",
					slog.String("error", err.Error()),
					slog.String("message_id", delivery.MessageId),
				)
				// malformed messages go to the dead letter exchange, if any
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			select {
			case w.eventsChan <- &message{event: evt, delivery: delivery}:
				w.logger.Debug("Event dispatched to worker pool",
					slog.String("event_id", evt.ID),
					slog.String("type", string(evt.Type)),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching event")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return false
			}
		}
	}
}
