package domain

import (
	"strings"
	"time"
)

// InventoryItem is one stock line of chemicals or consumables
type InventoryItem struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Unit               string   `json:"unit"`
	CostPerUnit        float64  `json:"costPerUnit"`
	RetailPricePerUnit *float64 `json:"retailPricePerUnit,omitempty"`
	// StockLevel may go negative when usage outruns recorded stock
	StockLevel         float64   `json:"stockLevel"`
	MinStockLevel      float64   `json:"minStockLevel"`
	BatchNumber        string    `json:"batchNumber,omitempty"`
	ExpiryDate         string    `json:"expiryDate,omitempty"`
	ActiveIngredient   string    `json:"activeIngredient,omitempty"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Validate checks a direct edit
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return NewValidationError("unit", "is required")
	}
	if err := CheckFinite("stockLevel", i.StockLevel); err != nil {
		return err
	}
	if err := CheckFinite("costPerUnit", i.CostPerUnit); err != nil {
		return err
	}
	if i.CostPerUnit < 0 {
		return NewValidationError("costPerUnit", "must not be negative")
	}
	if i.RetailPricePerUnit != nil {
		if err := CheckFinite("retailPricePerUnit", *i.RetailPricePerUnit); err != nil {
			return err
		}
		if *i.RetailPricePerUnit < 0 {
			return NewValidationError("retailPricePerUnit", "must not be negative")
		}
	}
	if err := CheckFinite("minStockLevel", i.MinStockLevel); err != nil {
		return err
	}
	if i.MinStockLevel < 0 {
		return NewValidationError("minStockLevel", "must not be negative")
	}
	if i.ExpiryDate != "" {
		if _, err := time.Parse(DateLayout, i.ExpiryDate); err != nil {
			return NewValidationError("expiryDate", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// IsLowStock reports stock below the reorder level
func (i *InventoryItem) IsLowStock() bool {
	return i.StockLevel < i.MinStockLevel
}

// MaterialUsage records consumption of an inventory item on a job. Immutable once created.
type MaterialUsage struct {
	ID                string    `json:"id"`
	InventoryItemID   string    `json:"inventoryItemId"`
	ItemName          string    `json:"itemName"`
	QtyUsed           float64   `json:"qtyUsed"`
	Unit              string    `json:"unit"`
	Cost              float64   `json:"cost"`
	BatchNumber       string    `json:"batchNumber,omitempty"`
	ApplicationMethod string    `json:"applicationMethod,omitempty"`
	DilutionRate      string    `json:"dilutionRate,omitempty"`
	TargetPest        string    `json:"targetPest,omitempty"`
	CheckpointID      string    `json:"checkpointId,omitempty"`
	Date              time.Time `json:"date"`
	RecordedBy        string    `json:"recordedBy,omitempty"`
}

// UsageInput carries the technician supplied fields of a usage record
type UsageInput struct {
	InventoryItemID   string
	QtyUsed           float64
	BatchNumber       string
	ApplicationMethod string
	DilutionRate      string
	TargetPest        string
	CheckpointID      string
}

// Validate checks quantity and item reference
func (in *UsageInput) Validate() error {
	if strings.TrimSpace(in.InventoryItemID) == "" {
		return NewValidationError("inventoryItemId", "is required")
	}
	if err := CheckFinite("qtyUsed", in.QtyUsed); err != nil {
		return err
	}
	if in.QtyUsed <= 0 {
		return NewValidationError("qtyUsed", "must be greater than 0")
	}
	return nil
}

// UsageCost prices qty of item at its current cost
func UsageCost(item InventoryItem, qty float64) (float64, error) {
	cost := qty * item.CostPerUnit
	if err := CheckFinite("qtyUsed", cost); err != nil {
		return 0, err
	}
	return cost, nil
}

// NewMaterialUsage prices the usage at the item's current cost
func NewMaterialUsage(id string, item InventoryItem, in UsageInput, now time.Time, user string) MaterialUsage {
	batch := in.BatchNumber
	if batch == "" {
		batch = item.BatchNumber
	}
	return MaterialUsage{
		ID:                id,
		InventoryItemID:   item.ID,
		ItemName:          item.Name,
		QtyUsed:           in.QtyUsed,
		Unit:              item.Unit,
		Cost:              in.QtyUsed * item.CostPerUnit,
		BatchNumber:       batch,
		ApplicationMethod: in.ApplicationMethod,
		DilutionRate:      in.DilutionRate,
		TargetPest:        in.TargetPest,
		CheckpointID:      in.CheckpointID,
		Date:              now,
		RecordedBy:        user,
	}
}
