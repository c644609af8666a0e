package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobcard-service/internal/api/dto"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/gin-gonic/gin"
)

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), actor(c), jobcard.CreateJobInput{
		Client:           req.Client,
		AssessmentDate:   req.AssessmentDate,
		SelectedServices: req.SelectedServices,
		Notes:            req.Notes,
	})
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to create job")
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs newest first with optional status filter and cursor pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	var status domain.JobStatus
	if req.Status != "" {
		parsed, err := domain.ParseStatus(req.Status)
		if err != nil {
			respondError(c, h.logger, "Invalid status", err)
			return
		}
		status = parsed
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Debug("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	jobs, next := h.jobs.ListJobs(c.Request.Context(), jobcard.JobFilter{
		Status:   status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})

	resp := dto.ListJobsResponse{Jobs: jobs}
	if next != nil {
		resp.NextCursor = EncodeJobCursor(next)
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateJob handles PATCH /api/v1/jobs/:job_id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.UpdateJob(c.Request.Context(), actor(c), c.Param("job_id"), jobcard.UpdateJobInput{
		Client:           req.Client,
		AssessmentDate:   req.AssessmentDate,
		ServiceDate:      req.ServiceDate,
		ServiceTime:      req.ServiceTime,
		SelectedServices: req.SelectedServices,
		Notes:            req.Notes,
	})
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update job")
}

// DeleteJob handles DELETE /api/v1/jobs/:job_id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("job_id")
	err := h.jobs.DeleteJob(c.Request.Context(), jobID)
	if errors.Is(err, domain.ErrPersistence) {
		c.JSON(http.StatusAccepted, gin.H{"persisted": false})
		return
	}
	if err != nil {
		respondError(c, h.logger, "Failed to delete job", err)
		return
	}

	h.logger.Info("Job deleted",
		slog.String("job_id", jobID),
		slog.String("user", actor(c).FullName),
	)
	c.Status(http.StatusNoContent)
}

// AdvanceStatus handles POST /api/v1/jobs/:job_id/status
func (h *JobHandler) AdvanceStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, "Invalid status", err)
		return
	}

	job, err := h.jobs.AdvanceStatus(c.Request.Context(), actor(c), c.Param("job_id"), status)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to change job status")
}

// CancelJob handles POST /api/v1/jobs/:job_id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	job, err := h.jobs.CancelJob(c.Request.Context(), actor(c), c.Param("job_id"))
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to cancel job")
}

// ScheduleJob handles POST /api/v1/jobs/:job_id/schedule
// Approves the quote and books the service date
func (h *JobHandler) ScheduleJob(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.ApproveAndSchedule(c.Request.Context(), actor(c), c.Param("job_id"), req.Date, req.Time)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to schedule job")
}

// CloseJob handles POST /api/v1/jobs/:job_id/close
func (h *JobHandler) CloseJob(c *gin.Context) {
	var req dto.CloseJobRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}
	}

	job, err := h.jobs.CloseJob(c.Request.Context(), actor(c), c.Param("job_id"), req.FollowUpMonths)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to close job")
}

// RebookJob handles POST /api/v1/jobs/:job_id/rebook
func (h *JobHandler) RebookJob(c *gin.Context) {
	job, err := h.jobs.Rebook(c.Request.Context(), actor(c), c.Param("job_id"))
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to rebook job")
}

// Features handles GET /api/v1/jobs/:job_id/features
func (h *JobHandler) Features(c *gin.Context) {
	view, err := h.jobs.Features(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get job features", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// QRPayload handles GET /api/v1/jobs/:job_id/qr
func (h *JobHandler) QRPayload(c *gin.Context) {
	jobID := c.Param("job_id")
	payload, err := h.jobs.QRPayload(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "Failed to build QR payload", err)
		return
	}
	c.JSON(http.StatusOK, dto.QRResponse{JobID: jobID, Payload: payload})
}
