package jobcard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// UpdateCheckpointInput is a partial patch of the assessment fields. Nil fields are left unchanged.
type UpdateCheckpointInput struct {
	Area             *string
	PestType         *string
	Severity         *domain.Severity
	InfestationLevel *domain.InfestationLevel
	ActionPriority   *domain.ActionPriority
	Notes            *string
	IsBaitStation    *bool
}

// ScanInput is one half of the two-scan protocol
type ScanInput struct {
	Code string
	Mode domain.ScanMode
	// CheckpointID restricts matching to one preselected checkpoint
	CheckpointID string
	// Force completes open tasks on an end scan
	Force bool
}

// ScanResult reports the checkpoint a scan resolved to
type ScanResult struct {
	Job          *domain.JobCard
	CheckpointID string
	// ForcedTasks is the number of tasks completed by a forced end scan
	ForcedTasks int
}

// AddCheckpoint appends a checkpoint in any status. Area and pest type are required.
func (s *Service) AddCheckpoint(ctx context.Context, actor domain.Actor, jobID string, in domain.CheckpointInput) (*domain.JobCard, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		now := s.now()
		cp := domain.NewCheckpoint(in, s.uniqueCode(job), now, s.newID)
		job.Checkpoints = append(job.Checkpoints, cp)
		job.AppendHistory(now, fmt.Sprintf("Checkpoint added: %s (%s)", cp.Area, cp.Code), actor.FullName)
		return nil
	})
}

const maxCodeAttempts = 16

// uniqueCode generates a checkpoint code not already used on the job.
// After maxCodeAttempts collisions the timestamp moves to the next millisecond.
func (s *Service) uniqueCode(job *domain.JobCard) string {
	taken := make(map[string]bool, len(job.Checkpoints))
	for i := range job.Checkpoints {
		taken[job.Checkpoints[i].Code] = true
	}

	now := s.now()
	for {
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			code := domain.CheckpointCode(now, s.randN(domain.CheckpointSuffixRange))
			if !taken[code] {
				return code
			}
		}
		now = now.Add(time.Millisecond)
	}
}

// UpdateCheckpoint edits the assessment fields of a checkpoint
func (s *Service) UpdateCheckpoint(ctx context.Context, actor domain.Actor, jobID, checkpointID string, in UpdateCheckpointInput) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		cp, err := checkpoint(job, checkpointID)
		if err != nil {
			return err
		}

		if in.Area != nil {
			if strings.TrimSpace(*in.Area) == "" {
				return domain.NewValidationError("area", "is required")
			}
			cp.Area = strings.TrimSpace(*in.Area)
		}
		if in.PestType != nil {
			if strings.TrimSpace(*in.PestType) == "" {
				return domain.NewValidationError("pestType", "is required")
			}
			cp.PestType = strings.TrimSpace(*in.PestType)
		}
		if in.Severity != nil {
			if !in.Severity.Valid() {
				return domain.NewValidationError("severity", fmt.Sprintf("unknown value %q", *in.Severity))
			}
			cp.Severity = *in.Severity
		}
		if in.InfestationLevel != nil {
			if !in.InfestationLevel.Valid() {
				return domain.NewValidationError("infestationLevel", fmt.Sprintf("unknown value %q", *in.InfestationLevel))
			}
			cp.InfestationLevel = *in.InfestationLevel
		}
		if in.ActionPriority != nil {
			if !in.ActionPriority.Valid() {
				return domain.NewValidationError("actionPriority", fmt.Sprintf("unknown value %q", *in.ActionPriority))
			}
			cp.ActionPriority = *in.ActionPriority
		}
		if in.Notes != nil {
			cp.Notes = *in.Notes
		}
		if in.IsBaitStation != nil {
			cp.IsBaitStation = *in.IsBaitStation
		}

		job.AppendHistory(s.now(), "Checkpoint updated: "+cp.Area, actor.FullName)
		return nil
	})
}

// DeleteCheckpoint removes a checkpoint
func (s *Service) DeleteCheckpoint(ctx context.Context, actor domain.Actor, jobID, checkpointID string) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		i := job.CheckpointIndex(checkpointID)
		if i < 0 {
			return fmt.Errorf("%q: %w", checkpointID, domain.ErrCheckpointNotFound)
		}
		area := job.Checkpoints[i].Area
		job.Checkpoints = append(job.Checkpoints[:i], job.Checkpoints[i+1:]...)
		job.AppendHistory(s.now(), "Checkpoint removed: "+area, actor.FullName)
		return nil
	})
}

// SetTaskCompleted checks or unchecks a task. Requires the execution area.
func (s *Service) SetTaskCompleted(ctx context.Context, jobID, checkpointID, taskID string, completed bool) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureExecution); err != nil {
			return err
		}
		cp, err := checkpoint(job, checkpointID)
		if err != nil {
			return err
		}
		return cp.SetTaskCompleted(taskID, completed, s.now())
	})
}

// AddTask appends a checklist item to a checkpoint
func (s *Service) AddTask(ctx context.Context, jobID, checkpointID, description string) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		cp, err := checkpoint(job, checkpointID)
		if err != nil {
			return err
		}
		return cp.AddTask(description, s.newID())
	})
}

// SetMonitorData records bait station readings. Requires the execution area.
func (s *Service) SetMonitorData(ctx context.Context, jobID, checkpointID string, data domain.MonitorData) (*domain.JobCard, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureExecution); err != nil {
			return err
		}
		cp, err := checkpoint(job, checkpointID)
		if err != nil {
			return err
		}
		return cp.SetMonitorData(data)
	})
}

// AddCheckpointPhoto uploads a photo and stores its URL on the checkpoint.
// The job must exist before the upload is attempted.
func (s *Service) AddCheckpointPhoto(ctx context.Context, jobID, checkpointID, filename string, body io.Reader) (*domain.JobCard, error) {
	job, err := s.lookup(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CheckpointIndex(checkpointID) < 0 {
		return nil, fmt.Errorf("%q: %w", checkpointID, domain.ErrCheckpointNotFound)
	}

	url, err := s.upload(ctx, filename, body)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		cp, err := checkpoint(job, checkpointID)
		if err != nil {
			return err
		}
		cp.Photos = append(cp.Photos, url)
		return nil
	})
}

// LoadTemplate appends one checkpoint per step of the service's assessment template
func (s *Service) LoadTemplate(ctx context.Context, actor domain.Actor, jobID, serviceID string) (*domain.JobCard, error) {
	svc, ok := s.service(serviceID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", serviceID, domain.ErrServiceNotFound)
	}
	if len(svc.AssessmentTemplate) == 0 {
		return nil, fmt.Errorf("%s: %w", svc.Title, domain.ErrNoTemplate)
	}

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		now := s.now()
		for _, step := range svc.AssessmentTemplate {
			in := domain.CheckpointInput{
				Area:     step.AreaName,
				PestType: step.DefaultPest,
				Tasks:    []string{step.DefaultTask},
			}
			if err := in.Validate(); err != nil {
				return fmt.Errorf("template %s: %w", svc.Title, err)
			}
			job.Checkpoints = append(job.Checkpoints, domain.NewCheckpoint(in, s.uniqueCode(job), now, s.newID))
		}
		job.AppendHistory(now, fmt.Sprintf("Loaded %d checkpoints from %s template", len(svc.AssessmentTemplate), svc.Title), actor.FullName)
		return nil
	})
}

// Scan runs one half of the two-scan protocol. Unknown codes are never turned into checkpoints.
func (s *Service) Scan(ctx context.Context, actor domain.Actor, jobID string, in ScanInput) (ScanResult, error) {
	if !in.Mode.Valid() {
		return ScanResult{}, domain.NewValidationError("mode", fmt.Sprintf("unknown scan mode %q", in.Mode))
	}

	var result ScanResult
	job, err := s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureExecution); err != nil {
			return err
		}
		i, err := domain.MatchCheckpoint(job.Checkpoints, in.Code, in.CheckpointID)
		if err != nil {
			return err
		}

		cp := &job.Checkpoints[i]
		now := s.now()
		switch in.Mode {
		case domain.ScanModeStart:
			if err := cp.StartScan(in.Code, now); err != nil {
				return err
			}
			job.AppendHistory(now, "Scan started: "+cp.Area, actor.FullName)
		case domain.ScanModeEnd:
			open := cp.IncompleteTasks()
			if err := cp.EndScan(now, in.Force); err != nil {
				return err
			}
			action := "Scan completed: " + cp.Area
			if open > 0 {
				result.ForcedTasks = open
				action += fmt.Sprintf(" (%d tasks force-completed)", open)
			}
			job.AppendHistory(now, action, actor.FullName)
		}
		result.CheckpointID = cp.ID
		return nil
	})
	result.Job = job
	return result, err
}

func checkpoint(job *domain.JobCard, id string) (*domain.Checkpoint, error) {
	i := job.CheckpointIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", id, domain.ErrCheckpointNotFound)
	}
	return &job.Checkpoints[i], nil
}

func (s *Service) upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("file uploads are not configured: %w", domain.ErrConflict)
	}
	url, err := s.uploader.Upload(ctx, filename, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return url, nil
}
