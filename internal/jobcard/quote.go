package jobcard

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// LineItemInput carries a manually priced quote line
type LineItemInput struct {
	Name        string
	Description string
	Qty         float64
	UnitPrice   float64
}

// QuoteTermsInput is a partial patch of the quote terms. Nil fields are left unchanged.
type QuoteTermsInput struct {
	VATRate      *float64
	DepositType  *domain.DepositType
	DepositValue *float64
	Notes        *string
}

// DepositView is the derived deposit of a quote
type DepositView struct {
	Type       domain.DepositType `json:"type"`
	Value      float64            `json:"value"`
	Amount     float64            `json:"amount"`
	BalanceDue float64            `json:"balanceDue"`
	Paid       bool               `json:"paid"`
}

// AddLineItem appends a manually priced line and re-derives the totals
func (s *Service) AddLineItem(ctx context.Context, jobID string, in LineItemInput) (*domain.JobCard, error) {
	item := domain.QuoteLineItem{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Qty:         in.Qty,
		UnitPrice:   in.UnitPrice,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		return job.Quote.AddLineItem(item)
	})
}

// AddLineItemFromInventory prices a line from a stock item. The stock level is not touched.
func (s *Service) AddLineItemFromInventory(ctx context.Context, jobID, inventoryItemID string, qty float64) (*domain.JobCard, error) {
	if err := domain.CheckFinite("qty", qty); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, domain.NewValidationError("qty", "must be greater than 0")
	}
	stock, err := s.inventory.Get(inventoryItemID)
	if err != nil {
		return nil, err
	}
	item := domain.LineItemFromInventory(stock, qty, s.newID())

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		return job.Quote.AddLineItem(item)
	})
}

// RemoveLineItem drops a quote line
func (s *Service) RemoveLineItem(ctx context.Context, jobID, lineItemID string) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.Quote.RemoveLineItem(lineItemID); err != nil {
			return fmt.Errorf("%q: %w", lineItemID, err)
		}
		return nil
	})
}

// UpdateQuoteTerms changes the VAT rate, deposit terms or notes
func (s *Service) UpdateQuoteTerms(ctx context.Context, jobID string, in QuoteTermsInput) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		q := &job.Quote
		if in.VATRate != nil {
			if err := q.SetVATRate(*in.VATRate); err != nil {
				return err
			}
		}
		if in.DepositType != nil || in.DepositValue != nil {
			depositType, value := q.DepositType, q.DepositValue
			if in.DepositType != nil {
				depositType = *in.DepositType
			}
			if in.DepositValue != nil {
				value = *in.DepositValue
			}
			if err := q.SetDeposit(depositType, value); err != nil {
				return err
			}
		}
		if in.Notes != nil {
			q.Notes = *in.Notes
		}
		return nil
	})
}

// Deposit derives the deposit and balance of the job's quote
func (s *Service) Deposit(ctx context.Context, jobID string) (DepositView, error) {
	job, err := s.lookup(ctx, jobID)
	if err != nil {
		return DepositView{}, err
	}
	return DepositView{
		Type:       job.Quote.DepositType,
		Value:      job.Quote.DepositValue,
		Amount:     job.Quote.DepositAmount(),
		BalanceDue: job.Quote.BalanceDue(),
		Paid:       job.DepositPaid,
	}, nil
}
