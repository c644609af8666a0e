package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// Storage handles notification persistence for the worker
type Storage struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(store docstore.Store, logger *slog.Logger) *Storage {
	return &Storage{
		store:  store,
		logger: logger,
	}
}

// GetNotification retrieves a notification by its ID. The bool is false when none exists.
func (s *Storage) GetNotification(ctx context.Context, id string) (domain.Notification, bool, error) {
	var n domain.Notification
	err := s.store.Get(ctx, docstore.CollectionNotifications, id, &n)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Notification{}, false, nil
	}
	if err != nil {
		return domain.Notification{}, false, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, true, nil
}

// SaveNotification creates or replaces a notification.
// Replacing an existing one keeps its creation time and marks it unread again.
func (s *Storage) SaveNotification(ctx context.Context, n domain.Notification) error {
	existing, found, err := s.GetNotification(ctx, n.ID)
	if err != nil {
		return err
	}
	if found {
		n.CreatedAt = existing.CreatedAt
	}
	n.Read = false

	if err := s.store.Upsert(ctx, docstore.CollectionNotifications, n.ID, n); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	s.logger.Debug("Notification saved",
		slog.String("notification_id", n.ID),
		slog.String("kind", string(n.Kind)),
		slog.Bool("replaced", found),
	)
	return nil
}
