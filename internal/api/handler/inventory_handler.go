package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler handles stock ledger HTTP requests
type InventoryHandler struct {
	logger *slog.Logger
	ledger *inventory.Ledger
	jobs   *jobcard.Service
}

// NewInventoryHandler creates a new InventoryHandler instance
func NewInventoryHandler(deps *Dependencies) *InventoryHandler {
	return &InventoryHandler{
		logger: deps.Logger,
		ledger: deps.Inventory,
		jobs:   deps.Jobs,
	}
}

// ListItems handles GET /api/v1/inventory
func (h *InventoryHandler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.ledger.List()})
}

// GetItem handles GET /api/v1/inventory/:item_id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.ledger.Get(c.Param("item_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get inventory item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req domain.InventoryItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}
	req.ID = ""
	h.save(c, req, http.StatusCreated)
}

// UpdateItem handles PUT /api/v1/inventory/:item_id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req domain.InventoryItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	req.ID = c.Param("item_id")
	if _, err := h.ledger.Get(req.ID); err != nil {
		respondError(c, h.logger, "Failed to get inventory item", err)
		return
	}
	h.save(c, req, http.StatusOK)
}

func (h *InventoryHandler) save(c *gin.Context, item domain.InventoryItem, okStatus int) {
	if !actor(c).Can(domain.PermissionInventory) {
		respondError(c, h.logger, "Forbidden", fmt.Errorf("editing stock requires %s permission: %w", domain.PermissionInventory, domain.ErrForbidden))
		return
	}

	saved, err := h.ledger.Save(c.Request.Context(), item)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		respondError(c, h.logger, "Failed to save inventory item", err)
		return
	}
	c.JSON(persistStatus(okStatus, err), gin.H{"item": saved, "persisted": err == nil})
}

// DeleteItem handles DELETE /api/v1/inventory/:item_id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if !actor(c).Can(domain.PermissionInventory) {
		respondError(c, h.logger, "Forbidden", fmt.Errorf("editing stock requires %s permission: %w", domain.PermissionInventory, domain.ErrForbidden))
		return
	}
	err := h.ledger.Delete(c.Request.Context(), c.Param("item_id"))
	switch {
	case errors.Is(err, domain.ErrPersistence):
		c.JSON(http.StatusAccepted, gin.H{"persisted": false})
	case err != nil:
		respondError(c, h.logger, "Failed to delete inventory item", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.ledger.LowStock()})
}

// Export handles GET /api/v1/inventory/export.xlsx
func (h *InventoryHandler) Export(c *gin.Context) {
	data, err := inventory.ExportXLSX(h.ledger.List(), h.jobs.UsageRows(c.Request.Context()))
	if err != nil {
		respondError(c, h.logger, "Failed to export inventory", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
