package dto

import "github.com/cuongbtq/jobcard-service/internal/domain"

type CreateCheckpointRequest struct {
	Area             string                  `json:"area" binding:"required"`
	PestType         string                  `json:"pest_type" binding:"required"`
	Severity         domain.Severity         `json:"severity"`
	InfestationLevel domain.InfestationLevel `json:"infestation_level"`
	ActionPriority   domain.ActionPriority   `json:"action_priority"`
	Notes            string                  `json:"notes"`
	IsBaitStation    bool                    `json:"is_bait_station"`
	Tasks            []string                `json:"tasks"`
}

type UpdateCheckpointRequest struct {
	Area             *string                  `json:"area"`
	PestType         *string                  `json:"pest_type"`
	Severity         *domain.Severity         `json:"severity"`
	InfestationLevel *domain.InfestationLevel `json:"infestation_level"`
	ActionPriority   *domain.ActionPriority   `json:"action_priority"`
	Notes            *string                  `json:"notes"`
	IsBaitStation    *bool                    `json:"is_bait_station"`
}

type AddTaskRequest struct {
	Description string `json:"description" binding:"required"`
}

type TaskRequest struct {
	Completed bool `json:"completed"`
}

type ScanRequest struct {
	Code         string `json:"code" binding:"required"`
	Mode         string `json:"mode" binding:"required"`
	CheckpointID string `json:"checkpoint_id"`
	Force        bool   `json:"force"`
}

type ScanResponse struct {
	JobResponse
	CheckpointID string `json:"checkpoint_id,omitempty"`
	ForcedTasks  int    `json:"forced_tasks"`
}
