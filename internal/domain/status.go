package domain

import (
	"fmt"
	"strings"
)

// JobStatus is the lifecycle state of a job card
type JobStatus string

const (
	StatusAssessment    JobStatus = "Assessment"
	StatusQuoteBuilder  JobStatus = "Quote_Builder"
	StatusQuoteSent     JobStatus = "Quote_Sent"
	StatusJobScheduled  JobStatus = "Job_Scheduled"
	StatusJobInProgress JobStatus = "Job_In_Progress"
	StatusJobReview     JobStatus = "Job_Review"
	StatusInvoiced      JobStatus = "Invoiced"
	StatusCompleted     JobStatus = "Completed"
	StatusCancelled     JobStatus = "Cancelled"
)

// AllStatuses lists every status in lifecycle order, Cancelled last
var AllStatuses = []JobStatus{
	StatusAssessment,
	StatusQuoteBuilder,
	StatusQuoteSent,
	StatusJobScheduled,
	StatusJobInProgress,
	StatusJobReview,
	StatusInvoiced,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus accepts the stored form ("Job_Scheduled") or the label form ("Job Scheduled")
func ParseStatus(s string) (JobStatus, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	for _, status := range AllStatuses {
		if strings.EqualFold(string(status), normalized) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidStatus)
}

// Valid reports whether s is one of the known statuses
func (s JobStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label is the human readable status name
func (s JobStatus) Label() string {
	switch s {
	case StatusAssessment:
		return "Assessment"
	case StatusQuoteBuilder:
		return "Quote Builder"
	case StatusQuoteSent:
		return "Quote Sent"
	case StatusJobScheduled:
		return "Job Scheduled"
	case StatusJobInProgress:
		return "Job In Progress"
	case StatusJobReview:
		return "Job Review"
	case StatusInvoiced:
		return "Invoiced"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Color is the badge color used by documents and the admin panel
func (s JobStatus) Color() string {
	switch s {
	case StatusAssessment:
		return "#64748b"
	case StatusQuoteBuilder:
		return "#8b5cf6"
	case StatusQuoteSent:
		return "#3b82f6"
	case StatusJobScheduled:
		return "#0ea5e9"
	case StatusJobInProgress:
		return "#f59e0b"
	case StatusJobReview:
		return "#f97316"
	case StatusInvoiced:
		return "#14b8a6"
	case StatusCompleted:
		return "#22c55e"
	case StatusCancelled:
		return "#ef4444"
	}
	return "#94a3b8"
}

// Feature is a gated area of the job card
type Feature string

const (
	FeatureExecution Feature = "execution"
	FeatureInvoice   Feature = "invoice"
)

// AllFeatures lists the gated areas
var AllFeatures = []Feature{FeatureExecution, FeatureInvoice}

// Unlocks reports whether feature f is available in status s.
// Execution and Invoice open once a job is scheduled and stay open through completion.
func (s JobStatus) Unlocks(f Feature) bool {
	switch f {
	case FeatureExecution, FeatureInvoice:
		switch s {
		case StatusJobScheduled, StatusJobInProgress, StatusJobReview, StatusInvoiced, StatusCompleted:
			return true
		case StatusAssessment, StatusQuoteBuilder, StatusQuoteSent, StatusCancelled:
			return false
		}
	}
	return false
}
