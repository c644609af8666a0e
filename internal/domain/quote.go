package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DepositType selects how a deposit is derived from the quote total
type DepositType string

const (
	DepositNone       DepositType = "None"
	DepositPercentage DepositType = "Percentage"
	DepositFixed      DepositType = "Fixed"
)

func (d DepositType) Valid() bool {
	switch d {
	case DepositNone, DepositPercentage, DepositFixed:
		return true
	}
	return false
}

// InventoryMarkup is applied to cost when an item has no retail price
const InventoryMarkup = 1.5

// QuoteLineItem is one priced line of a quote
type QuoteLineItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Qty             float64 `json:"qty"`
	UnitPrice       float64 `json:"unitPrice"`
	Total           float64 `json:"total"`
	InventoryItemID string  `json:"inventoryItemId,omitempty"`
}

// Validate checks the operator supplied fields
func (li *QuoteLineItem) Validate() error {
	if strings.TrimSpace(li.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if err := CheckFinite("qty", li.Qty); err != nil {
		return err
	}
	if li.Qty <= 0 {
		return NewValidationError("qty", "must be greater than 0")
	}
	if err := CheckFinite("unitPrice", li.UnitPrice); err != nil {
		return err
	}
	if li.UnitPrice < 0 {
		return NewValidationError("unitPrice", "must not be negative")
	}
	return CheckFinite("total", li.Qty*li.UnitPrice)
}

// JobQuote is the quote value object. Subtotal and Total are derived from the lines.
type JobQuote struct {
	LineItems    []QuoteLineItem `json:"lineItems"`
	Subtotal     float64         `json:"subtotal"`
	VATRate      float64         `json:"vatRate"`
	Total        float64         `json:"total"`
	Notes        string          `json:"notes"`
	DepositType  DepositType     `json:"depositType"`
	DepositValue float64         `json:"depositValue"`
}

// NewQuote returns an empty quote at vatRate
func NewQuote(vatRate float64) JobQuote {
	return JobQuote{
		LineItems:   []QuoteLineItem{},
		VATRate:     vatRate,
		DepositType: DepositNone,
	}
}

func (q *JobQuote) normalize() {
	if q.LineItems == nil {
		q.LineItems = []QuoteLineItem{}
	}
	if q.DepositType == "" {
		q.DepositType = DepositNone
	}
	q.Recalculate()
}

// Recalculate re-derives every line total, the subtotal and the VAT inclusive total
func (q *JobQuote) Recalculate() {
	subtotal := 0.0
	for i := range q.LineItems {
		q.LineItems[i].Total = q.LineItems[i].Qty * q.LineItems[i].UnitPrice
		subtotal += q.LineItems[i].Total
	}
	q.Subtotal = subtotal
	q.Total = subtotal * (1 + q.VATRate)
}

// VATAmount is the tax portion of the total
func (q *JobQuote) VATAmount() float64 {
	return q.Total - q.Subtotal
}

// AddLineItem validates and appends a line
func (q *JobQuote) AddLineItem(item QuoteLineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.Name = strings.TrimSpace(item.Name)

	prev := q.LineItems
	q.LineItems = append(q.LineItems[:len(q.LineItems):len(q.LineItems)], item)
	q.Recalculate()
	if err := CheckFinite("total", q.Total); err != nil {
		q.LineItems = prev
		q.Recalculate()
		return err
	}
	return nil
}

// RemoveLineItem drops the line with id
func (q *JobQuote) RemoveLineItem(id string) error {
	kept := make([]QuoteLineItem, 0, len(q.LineItems))
	found := false
	for _, li := range q.LineItems {
		if li.ID == id {
			found = true
			continue
		}
		kept = append(kept, li)
	}
	if !found {
		return ErrLineItemNotFound
	}
	q.LineItems = kept
	q.Recalculate()
	return nil
}

// SetVATRate changes the rate and re-derives the total
func (q *JobQuote) SetVATRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate >= 1 {
		return NewValidationError("vatRate", "must be a fraction between 0 and 1")
	}
	q.VATRate = rate
	q.Recalculate()
	return nil
}

// SetDeposit changes the deposit terms
func (q *JobQuote) SetDeposit(depositType DepositType, value float64) error {
	if !depositType.Valid() {
		return NewValidationError("depositType", fmt.Sprintf("unknown value %q", depositType))
	}
	if err := CheckFinite("depositValue", value); err != nil {
		return err
	}
	if value < 0 {
		return NewValidationError("depositValue", "must not be negative")
	}
	if depositType == DepositPercentage && value > 100 {
		return NewValidationError("depositValue", "percentage must not exceed 100")
	}
	if depositType == DepositNone {
		value = 0
	}
	q.DepositType = depositType
	q.DepositValue = value
	return nil
}

// DepositAmount derives the deposit from the current total. It is never stored.
func (q *JobQuote) DepositAmount() float64 {
	switch q.DepositType {
	case DepositPercentage:
		return q.Total * q.DepositValue / 100
	case DepositFixed:
		return q.DepositValue
	case DepositNone:
		return 0
	}
	return 0
}

// BalanceDue is the total less the deposit
func (q *JobQuote) BalanceDue() float64 {
	return q.Total - q.DepositAmount()
}

// LineItemFromInventory pre-fills a line from a stock item.
// The retail price is used when set, otherwise cost plus InventoryMarkup.
func LineItemFromInventory(item InventoryItem, qty float64, id string) QuoteLineItem {
	price := item.CostPerUnit * InventoryMarkup
	if item.RetailPricePerUnit != nil {
		price = *item.RetailPricePerUnit
	}

	var parts []string
	for _, p := range []string{item.Category, item.ActiveIngredient} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return QuoteLineItem{
		ID:              id,
		Name:            item.Name,
		Description:     strings.Join(parts, " - "),
		Qty:             qty,
		UnitPrice:       price,
		InventoryItemID: item.ID,
	}
}

// JobInvoice is materialized from the quote the first time invoice notes are edited
type JobInvoice struct {
	Number    string          `json:"number"`
	Date      string          `json:"date"`
	DueDate   string          `json:"dueDate"`
	LineItems []QuoteLineItem `json:"lineItems"`
	Subtotal  float64         `json:"subtotal"`
	VATRate   float64         `json:"vatRate"`
	Total     float64         `json:"total"`
	Notes     string          `json:"notes"`
}

// NewInvoice snapshots the quote lines and totals
func NewInvoice(number string, quote JobQuote, issued time.Time, termsDays int) *JobInvoice {
	lines := make([]QuoteLineItem, len(quote.LineItems))
	copy(lines, quote.LineItems)
	return &JobInvoice{
		Number:    number,
		Date:      issued.Format(DateLayout),
		DueDate:   issued.AddDate(0, 0, termsDays).Format(DateLayout),
		LineItems: lines,
		Subtotal:  quote.Subtotal,
		VATRate:   quote.VATRate,
		Total:     quote.Total,
		Notes:     quote.Notes,
	}
}
