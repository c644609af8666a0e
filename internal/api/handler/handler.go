package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobcard-service/internal/api/dto"
	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key holding the acting domain.Actor
const ActorKey = "actor"

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Jobs      *jobcard.Service
	Inventory *inventory.Ledger
	Store     docstore.Store
	// HealthCheck reports backing store health. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
	// MaxUploadBytes caps multipart uploads
	MaxUploadBytes int64
}

// JobHandler handles job card HTTP requests
type JobHandler struct {
	logger         *slog.Logger
	jobs           *jobcard.Service
	maxUploadBytes int64
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:         deps.Logger,
		jobs:           deps.Jobs,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

// actor returns the operator resolved by the actor middleware
func actor(c *gin.Context) domain.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrScanMismatch), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFeatureLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Server errors are logged and their detail hidden.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg,
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	body := gin.H{"error": err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	c.JSON(status, body)
}

// respondJob writes the result of a job mutation. A persistence failure still returns
// the updated job with 202 Accepted and persisted=false.
func respondJob(c *gin.Context, logger *slog.Logger, okStatus int, job *domain.JobCard, err error, msg string) {
	if err != nil && (job == nil || !errors.Is(err, domain.ErrPersistence)) {
		respondError(c, logger, msg, err)
		return
	}
	c.JSON(persistStatus(okStatus, err), newJobResponse(job, err))
}

func newJobResponse(job *domain.JobCard, err error) dto.JobResponse {
	resp := dto.JobResponse{Job: job, Persisted: err == nil}
	if err != nil {
		resp.Warning = "change saved in memory but not persisted"
	}
	return resp
}

func persistStatus(okStatus int, err error) int {
	if err != nil {
		return http.StatusAccepted
	}
	return okStatus
}
