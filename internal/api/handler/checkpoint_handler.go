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

// AddCheckpoint handles POST /api/v1/jobs/:job_id/checkpoints
func (h *JobHandler) AddCheckpoint(c *gin.Context) {
	var req dto.CreateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.AddCheckpoint(c.Request.Context(), actor(c), c.Param("job_id"), domain.CheckpointInput{
		Area:             req.Area,
		PestType:         req.PestType,
		Severity:         req.Severity,
		InfestationLevel: req.InfestationLevel,
		ActionPriority:   req.ActionPriority,
		Notes:            req.Notes,
		IsBaitStation:    req.IsBaitStation,
		Tasks:            req.Tasks,
	})
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to add checkpoint")
}

// UpdateCheckpoint handles PATCH /api/v1/jobs/:job_id/checkpoints/:checkpoint_id
func (h *JobHandler) UpdateCheckpoint(c *gin.Context) {
	var req dto.UpdateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.UpdateCheckpoint(c.Request.Context(), actor(c), c.Param("job_id"), c.Param("checkpoint_id"), jobcard.UpdateCheckpointInput{
		Area:             req.Area,
		PestType:         req.PestType,
		Severity:         req.Severity,
		InfestationLevel: req.InfestationLevel,
		ActionPriority:   req.ActionPriority,
		Notes:            req.Notes,
		IsBaitStation:    req.IsBaitStation,
	})
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update checkpoint")
}

// DeleteCheckpoint handles DELETE /api/v1/jobs/:job_id/checkpoints/:checkpoint_id
func (h *JobHandler) DeleteCheckpoint(c *gin.Context) {
	job, err := h.jobs.DeleteCheckpoint(c.Request.Context(), actor(c), c.Param("job_id"), c.Param("checkpoint_id"))
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to delete checkpoint")
}

// AddTask handles POST /api/v1/jobs/:job_id/checkpoints/:checkpoint_id/tasks
func (h *JobHandler) AddTask(c *gin.Context) {
	var req dto.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.AddTask(c.Request.Context(), c.Param("job_id"), c.Param("checkpoint_id"), req.Description)
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to add task")
}

// SetTask handles PATCH /api/v1/jobs/:job_id/checkpoints/:checkpoint_id/tasks/:task_id
func (h *JobHandler) SetTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.SetTaskCompleted(c.Request.Context(), c.Param("job_id"), c.Param("checkpoint_id"), c.Param("task_id"), req.Completed)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to update task")
}

// SetMonitorData handles PUT /api/v1/jobs/:job_id/checkpoints/:checkpoint_id/monitor
func (h *JobHandler) SetMonitorData(c *gin.Context) {
	var req domain.MonitorData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.jobs.SetMonitorData(c.Request.Context(), c.Param("job_id"), c.Param("checkpoint_id"), req)
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to record monitor data")
}

// AddPhoto handles POST /api/v1/jobs/:job_id/checkpoints/:checkpoint_id/photos (multipart field "file")
func (h *JobHandler) AddPhoto(c *gin.Context) {
	filename, body, ok := h.formFile(c)
	if !ok {
		return
	}
	defer body.Close()

	job, err := h.jobs.AddCheckpointPhoto(c.Request.Context(), c.Param("job_id"), c.Param("checkpoint_id"), filename, body)
	respondJob(c, h.logger, http.StatusCreated, job, err, "Failed to upload photo")
}

// LoadTemplate handles POST /api/v1/jobs/:job_id/templates/:service_id
func (h *JobHandler) LoadTemplate(c *gin.Context) {
	job, err := h.jobs.LoadTemplate(c.Request.Context(), actor(c), c.Param("job_id"), c.Param("service_id"))
	respondJob(c, h.logger, http.StatusOK, job, err, "Failed to load template")
}

// Scan handles POST /api/v1/jobs/:job_id/scan
func (h *JobHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	result, err := h.jobs.Scan(c.Request.Context(), actor(c), c.Param("job_id"), jobcard.ScanInput{
		Code:         req.Code,
		Mode:         domain.ScanMode(req.Mode),
		CheckpointID: req.CheckpointID,
		Force:        req.Force,
	})
	if err != nil && (result.Job == nil || !errors.Is(err, domain.ErrPersistence)) {
		if errors.Is(err, domain.ErrScanMismatch) || errors.Is(err, domain.ErrNotFound) {
			h.logger.Info("Scan rejected",
				slog.String("job_id", c.Param("job_id")),
				slog.String("code", req.Code),
				slog.Any("error", err),
			)
		}
		respondError(c, h.logger, "Failed to record scan", err)
		return
	}

	c.JSON(persistStatus(http.StatusOK, err), dto.ScanResponse{
		JobResponse:  newJobResponse(result.Job, err),
		CheckpointID: result.CheckpointID,
		ForcedTasks:  result.ForcedTasks,
	})
}
