package dto

import "github.com/cuongbtq/jobcard-service/internal/domain"

type LineItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
}

type InventoryLineItemRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	Qty             float64 `json:"qty"`
}

type QuoteTermsRequest struct {
	VATRate      *float64            `json:"vat_rate"`
	DepositType  *domain.DepositType `json:"deposit_type"`
	DepositValue *float64            `json:"deposit_value"`
	Notes        *string             `json:"notes"`
}

type InvoiceNotesRequest struct {
	Notes string `json:"notes"`
}

type DepositPaidRequest struct {
	Paid bool `json:"paid"`
}

type UsageRequest struct {
	InventoryItemID   string  `json:"inventory_item_id" binding:"required"`
	QtyUsed           float64 `json:"qty_used"`
	BatchNumber       string  `json:"batch_number"`
	ApplicationMethod string  `json:"application_method"`
	DilutionRate      string  `json:"dilution_rate"`
	TargetPest        string  `json:"target_pest"`
	CheckpointID      string  `json:"checkpoint_id"`
}

type PaymentRequest struct {
	Method    domain.PaymentMethod `json:"method" binding:"required"`
	Amount    float64              `json:"amount"`
	Reference string               `json:"reference"`
	Notes     string               `json:"notes"`
}

type MessageRequest struct {
	Type    string `json:"type" binding:"required"`
	Channel string `json:"channel" binding:"required"`
}
