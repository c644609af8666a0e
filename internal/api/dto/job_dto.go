package dto

import "github.com/cuongbtq/jobcard-service/internal/domain"

type CreateJobRequest struct {
	Client           domain.ClientDetails `json:"client" binding:"required"`
	AssessmentDate   string               `json:"assessment_date" binding:"required"`
	SelectedServices []string             `json:"selected_services"`
	Notes            string               `json:"notes"`
}

type UpdateJobRequest struct {
	Client           *domain.ClientDetails `json:"client"`
	AssessmentDate   *string               `json:"assessment_date"`
	ServiceDate      *string               `json:"service_date"`
	ServiceTime      *string               `json:"service_time"`
	SelectedServices []string              `json:"selected_services"`
	Notes            *string               `json:"notes"`
}

type ListJobsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []*domain.JobCard `json:"jobs"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ScheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time"`
}

type CloseJobRequest struct {
	FollowUpMonths int `json:"follow_up_months"`
}

// JobResponse wraps every job mutation. Persisted is false when the change is held
// in memory but the store write failed.
type JobResponse struct {
	Job       *domain.JobCard `json:"job"`
	Persisted bool            `json:"persisted"`
	Warning   string          `json:"warning,omitempty"`
}

type QRResponse struct {
	JobID   string `json:"job_id"`
	Payload string `json:"payload"`
}
