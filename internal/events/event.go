// Package events defines the job card domain events exchanged between the api and worker services.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RoutingPrefix is prepended to the event type to form the routing key
const RoutingPrefix = "jobcard."

// Type identifies an event
type Type string

const (
	TypeJobCreated       Type = "job.created"
	TypeJobStatusChanged Type = "job.status_changed"
	TypeJobClosed        Type = "job.closed"
	TypePaymentRecorded  Type = "payment.recorded"
	TypeStockLow         Type = "stock.low"
)

// ErrMalformedEvent is returned when a message body cannot be decoded into an Event
var ErrMalformedEvent = errors.New("malformed event")

// Event is the envelope published for every domain event
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	JobID      string          `json:"jobId,omitempty"`
	RefNumber  string          `json:"refNumber,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// StatusChanged is the payload of job.status_changed
type StatusChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
	User string `json:"user"`
}

// JobClosed is the payload of job.closed. FollowUpDate is nil when no follow-up was requested.
type JobClosed struct {
	ClientID     string     `json:"clientId,omitempty"`
	ClientName   string     `json:"clientName"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
}

// PaymentRecorded is the payload of payment.recorded
type PaymentRecorded struct {
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference,omitempty"`
	Client    string  `json:"client"`
}

// StockLow is the payload of stock.low
type StockLow struct {
	InventoryItemID string  `json:"inventoryItemId"`
	ItemName        string  `json:"itemName"`
	Unit            string  `json:"unit"`
	StockLevel      float64 `json:"stockLevel"`
	MinStockLevel   float64 `json:"minStockLevel"`
}

// New builds an event with an encoded payload
func New(id string, t Type, jobID, refNumber string, payload any, now time.Time) (Event, error) {
	evt := Event{
		ID:         id,
		Type:       t,
		JobID:      jobID,
		RefNumber:  refNumber,
		OccurredAt: now.UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
		}
		evt.Payload = data
	}
	return evt, nil
}

// RoutingKey returns the topic routing key for the event
func (e Event) RoutingKey() string {
	return RoutingPrefix + string(e.Type)
}

// Decode parses a message body
func Decode(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.ID == "" {
		return Event{}, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	if strings.TrimSpace(string(evt.Type)) == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return evt, nil
}

// DecodePayload unmarshals the payload into dest
func (e Event) DecodePayload(dest any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrMalformedEvent, e.Type)
	}
	if err := json.Unmarshal(e.Payload, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
