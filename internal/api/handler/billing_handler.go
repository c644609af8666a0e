package handler

import (
	"net/http"

	"github.com/cuongbtq/jobcard-service/internal/api/dto"
	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/gin-gonic/gin"
)

// AddLineItem handles POST /api/v1/jobs/:job_id/quote/items
func (h *JobHandler) AddLineItem(c *gin.Context) {
	var req dto.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.AddLineItem(c.Request.Context(), c.Param("job_id"), jobcard.LineItemInput{
		Name:        req.Name,
		Description: req.Description,
		Qty:         req.Qty,
		UnitPrice:   req.UnitPrice,
	})
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to add line item")
}

// AddInventoryLineItem handles POST /api/v1/jobs/:job_id/quote/items/inventory
func (h *JobHandler) AddInventoryLineItem(c *gin.Context) {
	var req dto.InventoryLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.AddLineItemFromInventory(c.Request.Context(), c.Param("job_id"), req.InventoryItemID, req.Qty)
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to add line item")
}

// RemoveLineItem handles DELETE /api/v1/jobs/:job_id/quote/items/:item_id
func (h *JobHandler) RemoveLineItem(c *gin.Context) {
	job, err := h.jobs.RemoveLineItem(c.Request.Context(), c.Param("job_id"), c.Param("item_id"))
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to remove line item")
}

// UpdateQuote handles PATCH /api/v1/jobs/:job_id/quote
func (h *JobHandler) UpdateQuote(c *gin.Context) {
	var req dto.QuoteTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.UpdateQuoteTerms(c.Request.Context(), c.Param("job_id"), jobcard.QuoteTermsInput{
		VATRate:      req.VATRate,
		DepositType:  req.DepositType,
		DepositValue: req.DepositValue,
		Notes:        req.Notes,
	})
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update quote")
}

// Deposit handles GET /api/v1/jobs/:job_id/quote/deposit
func (h *JobHandler) Deposit(c *gin.Context) {
	view, err := h.jobs.Deposit(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to compute deposit", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateInvoice handles PATCH /api/v1/jobs/:job_id/invoice
func (h *JobHandler) UpdateInvoice(c *gin.Context) {
	var req dto.InvoiceNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.UpdateInvoiceNotes(c.Request.Context(), actor(c), c.Param("job_id"), req.Notes)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update invoice")
}

// SetDepositPaid handles POST /api/v1/jobs/:job_id/deposit-paid
func (h *JobHandler) SetDepositPaid(c *gin.Context) {
	var req dto.DepositPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.SetDepositPaid(c.Request.Context(), actor(c), c.Param("job_id"), req.Paid)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update deposit")
}

// RecordUsage handles POST /api/v1/jobs/:job_id/usage
func (h *JobHandler) RecordUsage(c *gin.Context) {
	var req dto.UsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.RecordUsage(c.Request.Context(), actor(c), c.Param("job_id"), domain.UsageInput{
		InventoryItemID:   req.InventoryItemID,
		QtyUsed:           req.QtyUsed,
		BatchNumber:       req.BatchNumber,
		ApplicationMethod: req.ApplicationMethod,
		DilutionRate:      req.DilutionRate,
		TargetPest:        req.TargetPest,
		CheckpointID:      req.CheckpointID,
	})
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to record material usage")
}

// RecordPayment handles POST /api/v1/jobs/:job_id/payment
func (h *JobHandler) RecordPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.RecordPayment(c.Request.Context(), actor(c), c.Param("job_id"), jobcard.PaymentInput{
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to record payment")
}

// AttachCertificate handles POST /api/v1/jobs/:job_id/certificates (multipart field "file")
func (h *JobHandler) AttachCertificate(c *gin.Context) {
	filename, body, ok := h.formFile(c)
	if !ok {
		return
	}
	defer body.Close()

	job, err := h.jobs.AttachCertificate(c.Request.Context(), actor(c), c.Param("job_id"), filename, body)
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to attach certificate")
}

// RenderDocument handles GET /api/v1/jobs/:job_id/documents/:kind
func (h *JobHandler) RenderDocument(c *gin.Context) {
	kind, err := documents.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, "Invalid document kind", err)
		return
	}

	html, err := h.jobs.RenderDocument(c.Request.Context(), c.Param("job_id"), kind)
	if err != nil {
		respondError(c, h.logger, "Failed to render document", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// PrepareMessage handles POST /api/v1/jobs/:job_id/messages
func (h *JobHandler) PrepareMessage(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	msgType, err := documents.ParseMessageType(req.Type)
	if err != nil {
		respondError(c, h.logger, "Invalid message type", err)
		return
	}
	channel, err := documents.ParseChannel(req.Channel)
	if err != nil {
		respondError(c, h.logger, "Invalid channel", err)
		return
	}

	msg, err := h.jobs.PrepareMessage(c.Request.Context(), c.Param("job_id"), msgType, channel)
	if err != nil && msg.Link == "" {
		respondError(c, h.logger, "Failed to prepare message", err)
		return
	}
	c.JSON(persistStatus(http.StatusOK, err), msg)
}
