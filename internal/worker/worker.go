// Package worker consumes job card events from RabbitMQ and raises admin notifications.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// errDeliveriesClosed is returned by Start when the broker closes the delivery channel
var errDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// DeliverySource is the consuming side of the RabbitMQ client
type DeliverySource interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Source        DeliverySource
	Processor     Processor
	WorkerID      string
	QueueName     string
	Concurrency   int
	QueueSize     int
	PrefetchCount int
	EventTimeout  time.Duration
}

// Worker represents the background event worker
type Worker struct {
	logger        *slog.Logger
	source        DeliverySource
	processor     Processor
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	eventTimeout  time.Duration

	eventsChan chan *message
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// message is a decoded event together with the delivery it arrived on
type message struct {
	event    events.Event
	delivery amqp.Delivery
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = concurrency * 2
	}

	return &Worker{
		logger:        cfg.Logger,
		source:        cfg.Source,
		processor:     cfg.Processor,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		concurrency:   concurrency,
		prefetchCount: cfg.PrefetchCount,
		eventTimeout:  cfg.EventTimeout,
		eventsChan:    make(chan *message, queueSize),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes events until ctx is canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("event_timeout", w.eventTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	if closed := w.startMessageDispatcher(ctx, deliveries); closed {
		return errDeliveriesClosed
	}
	return nil
}

// Stop gracefully stops the worker, waiting for in-flight events
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
