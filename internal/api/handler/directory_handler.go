package handler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"sort"

	"github.com/cuongbtq/jobcard-service/internal/api/dto"
	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves the dashboard bootstrap, clients, services, notifications,
// the public job viewer and health
type DirectoryHandler struct {
	logger      *slog.Logger
	jobs        *jobcard.Service
	ledger      *inventory.Ledger
	store       docstore.Store
	healthCheck func(ctx context.Context) error
}

// NewDirectoryHandler creates a new DirectoryHandler instance
func NewDirectoryHandler(deps *Dependencies) *DirectoryHandler {
	return &DirectoryHandler{
		logger:      deps.Logger,
		jobs:        deps.Jobs,
		ledger:      deps.Inventory,
		store:       deps.Store,
		healthCheck: deps.HealthCheck,
	}
}

// Bootstrap handles GET /api/v1/bootstrap
func (h *DirectoryHandler) Bootstrap(c *gin.Context) {
	ctx := c.Request.Context()
	jobs, _ := h.jobs.ListJobs(ctx, jobcard.JobFilter{PageSize: math.MaxInt32})

	statuses := make([]dto.StatusDTO, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		statuses = append(statuses, dto.StatusDTO{
			Status:    s,
			Label:     s.Label(),
			Color:     s.Color(),
			Execution: s.Unlocks(domain.FeatureExecution),
			Invoice:   s.Unlocks(domain.FeatureInvoice),
		})
	}

	c.JSON(http.StatusOK, dto.BootstrapResponse{
		Jobs:      jobs,
		Inventory: h.ledger.List(),
		Clients:   h.jobs.ListClients(ctx),
		Services:  h.jobs.ListServices(ctx),
		LowStock:  h.ledger.LowStock(),
		Statuses:  statuses,
	})
}

// ListClients handles GET /api/v1/clients
func (h *DirectoryHandler) ListClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clients": h.jobs.ListClients(c.Request.Context())})
}

// ListServices handles GET /api/v1/services
func (h *DirectoryHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.jobs.ListServices(c.Request.Context())})
}

// SaveService handles POST /api/v1/services
func (h *DirectoryHandler) SaveService(c *gin.Context) {
	var req domain.ServiceOffering
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	svc, err := h.jobs.SaveService(c.Request.Context(), req)
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		respondError(c, h.logger, "Failed to save service", err)
		return
	}
	c.JSON(persistStatus(http.StatusOK, err), gin.H{"service": svc, "persisted": err == nil})
}

// ListNotifications handles GET /api/v1/notifications
func (h *DirectoryHandler) ListNotifications(c *gin.Context) {
	notes, err := docstore.ListAs[domain.Notification](c.Request.Context(), h.store, docstore.CollectionNotifications)
	if err != nil {
		respondError(c, h.logger, "Failed to list notifications", err)
		return
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	unread := 0
	for _, n := range notes {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Notifications: notes, Unread: unread})
}

// PublicJob handles GET /public/jobs/:job_id
// Resolves the job id carried by the QR payload
func (h *DirectoryHandler) PublicJob(c *gin.Context) {
	view, err := h.jobs.PublicView(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to load job", err)
		return
	}
	c.JSON(http.StatusOK, dto.PublicJobResponse{Job: view})
}

// Health handles GET /health
func (h *DirectoryHandler) Health(c *gin.Context) {
	if h.healthCheck != nil {
		if err := h.healthCheck(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "jobcard-api-service",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jobcard-api-service",
	})
}
