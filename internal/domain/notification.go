package domain

import "time"

// NotificationKind classifies an admin notification
type NotificationKind string

const (
	NotificationLowStock NotificationKind = "low_stock"
	NotificationFollowUp NotificationKind = "follow_up"
	NotificationPayment  NotificationKind = "payment"
)

// Notification is an item in the admin inbox, written by the worker
type Notification struct {
	ID              string           `json:"id"`
	Kind            NotificationKind `json:"kind"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	JobID           string           `json:"jobId,omitempty"`
	InventoryItemID string           `json:"inventoryItemId,omitempty"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	Read            bool             `json:"read"`
	CreatedAt       time.Time        `json:"createdAt"`
}
