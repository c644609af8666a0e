package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/events"
	"github.com/cuongbtq/jobcard-service/internal/worker/storage"
)

// Processor turns one event into side effects
type Processor interface {
	Process(ctx context.Context, evt events.Event) error
}

// NotificationProcessor materializes admin inbox notifications from job events.
// Notification ids are derived from the subject so redelivered events overwrite rather than duplicate.
type NotificationProcessor struct {
	storage *storage.Storage
	money   documents.Money
	logger  *slog.Logger
}

// NewNotificationProcessor creates a new NotificationProcessor
func NewNotificationProcessor(store *storage.Storage, currencySymbol string, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		storage: store,
		money:   documents.NewMoney(currencySymbol),
		logger:  logger,
	}
}

// Process handles a single event. Unknown event types are ignored.
func (p *NotificationProcessor) Process(ctx context.Context, evt events.Event) error {
	var (
		n   *domain.Notification
		err error
	)
	switch evt.Type {
	case events.TypeStockLow:
		n, err = p.stockLow(evt)
	case events.TypeJobClosed:
		n, err = p.followUp(evt)
	case events.TypePaymentRecorded:
		n, err = p.payment(evt)
	default:
		p.logger.Debug("Event ignored",
			slog.String("event_id", evt.ID),
			slog.String("type", string(evt.Type)),
		)
		return nil
	}
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	if err := p.storage.SaveNotification(ctx, *n); err != nil {
		return NewRetryableError(err)
	}

	p.logger.Info("Notification raised",
		slog.String("event_id", evt.ID),
		slog.String("notification_id", n.ID),
		slog.String("kind", string(n.Kind)),
		slog.String("job_id", evt.JobID),
	)
	return nil
}

func (p *NotificationProcessor) stockLow(evt events.Event) (*domain.Notification, error) {
	var payload events.StockLow
	if err := evt.DecodePayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.InventoryItemID == "" {
		return nil, fmt.Errorf("%w: stock.low without inventory item", ErrInvalidPayload)
	}

	return &domain.Notification{
		ID:    notificationID(domain.NotificationLowStock, payload.InventoryItemID),
		Kind:  domain.NotificationLowStock,
		Title: "Low stock: " + payload.ItemName,
		Message: fmt.Sprintf("%s is down to %s %s (minimum %s)",
			payload.ItemName, quantity(payload.StockLevel), payload.Unit, quantity(payload.MinStockLevel)),
		JobID:           evt.JobID,
		InventoryItemID: payload.InventoryItemID,
		CreatedAt:       evt.OccurredAt,
	}, nil
}

func (p *NotificationProcessor) followUp(evt events.Event) (*domain.Notification, error) {
	var payload events.JobClosed
	if err := evt.DecodePayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.FollowUpDate == nil {
		return nil, nil
	}

	due := *payload.FollowUpDate
	return &domain.Notification{
		ID:        notificationID(domain.NotificationFollowUp, evt.JobID),
		Kind:      domain.NotificationFollowUp,
		Title:     "Follow-up due " + due.Format(domain.DateLayout),
		Message:   fmt.Sprintf("Book a follow-up service for %s (job %s)", payload.ClientName, evt.RefNumber),
		JobID:     evt.JobID,
		DueDate:   &due,
		CreatedAt: evt.OccurredAt,
	}, nil
}

func (p *NotificationProcessor) payment(evt events.Event) (*domain.Notification, error) {
	var payload events.PaymentRecorded
	if err := evt.DecodePayload(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	msg := fmt.Sprintf("%s paid %s by %s", payload.Client, p.money.Format(payload.Amount), payload.Method)
	if payload.Reference != "" {
		msg += " (ref " + payload.Reference + ")"
	}
	return &domain.Notification{
		ID:        notificationID(domain.NotificationPayment, evt.JobID),
		Kind:      domain.NotificationPayment,
		Title:     "Payment received: " + evt.RefNumber,
		Message:   msg,
		JobID:     evt.JobID,
		CreatedAt: evt.OccurredAt,
	}, nil
}

func notificationID(kind domain.NotificationKind, subject string) string {
	return string(kind) + "-" + subject
}

// quantity drops trailing zeros, e.g. 15 -> "15", 2.5 -> "2.5"
func quantity(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	return strings.TrimSuffix(s, ".")
}
