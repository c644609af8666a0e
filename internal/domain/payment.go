package domain

import (
	"fmt"
	"time"
)

// PaymentMethod is how a payment was received
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "Cash"
	PaymentEFT   PaymentMethod = "EFT"
	PaymentCard  PaymentMethod = "Card"
	PaymentOther PaymentMethod = "Other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentEFT, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// PaymentRecord is the single payment captured against a job. Recording again overwrites it.
type PaymentRecord struct {
	Method     PaymentMethod `json:"method"`
	Amount     float64       `json:"amount"`
	Date       time.Time     `json:"date"`
	Reference  string        `json:"reference,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	RecordedBy string        `json:"recordedBy,omitempty"`
}

// Validate checks amount and method
func (p *PaymentRecord) Validate() error {
	if err := CheckFinite("amount", p.Amount); err != nil {
		return err
	}
	if p.Amount <= 0 {
		return NewValidationError("amount", "must be greater than 0")
	}
	if !p.Method.Valid() {
		return NewValidationError("method", fmt.Sprintf("unknown value %q", p.Method))
	}
	return nil
}
