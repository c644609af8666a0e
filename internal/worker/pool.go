package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg := <-w.eventsChan:
			w.handle(ctx, workerName, msg)
		}
	}
}

// handle processes one event and settles its delivery
func (w *Worker) handle(ctx context.Context, workerName string, msg *message) {
	evtCtx := ctx
	if w.eventTimeout > 0 {
		var cancel context.CancelFunc
		evtCtx, cancel = context.WithTimeout(ctx, w.eventTimeout)
		defer cancel()
	}

	err := w.processor.Process(evtCtx, msg.event)
	if err == nil {
		if ackErr := msg.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("event_id", msg.event.ID),
				slog.String("error", ackErr.Error()),
			)
		}
		return
	}

	// a second failure of a redelivered message is not requeued again
	requeue := shouldRequeue(err) && !msg.delivery.Redelivered
	w.logger.Error("Event processing failed",
		slog.String("worker_name", workerName),
		slog.String("event_id", msg.event.ID),
		slog.String("type", string(msg.event.Type)),
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)
	if nackErr := msg.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.String("event_id", msg.event.ID),
			slog.String("error", nackErr.Error()),
		)
	}
}

// shouldRequeue determines if an event should be requeued based on the error type
func shouldRequeue(err error) bool {
	if errors.Is(err, ErrInvalidPayload) {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	// Timeouts are transient
	return errors.Is(err, context.DeadlineExceeded)
}
