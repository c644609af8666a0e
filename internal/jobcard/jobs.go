package jobcard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/events"
)

// CreateJobInput carries the fields of a new job
type CreateJobInput struct {
	Client           domain.ClientDetails
	AssessmentDate   string
	SelectedServices []string
	Notes            string
}

// UpdateJobInput is a partial patch. Nil fields are left unchanged.
type UpdateJobInput struct {
	Client           *domain.ClientDetails
	AssessmentDate   *string
	ServiceDate      *string
	ServiceTime      *string
	SelectedServices []string
	Notes            *string
}

// JobFilter selects a page of jobs ordered by creation time, newest first
type JobFilter struct {
	Status   domain.JobStatus
	PageSize int
	Cursor   *JobCursor
}

// JobCursor marks the last job of the previous page
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// FeatureView reports which gated areas a job's status unlocks
type FeatureView struct {
	Status    domain.JobStatus `json:"status"`
	Label     string           `json:"label"`
	Color     string           `json:"color"`
	Execution bool             `json:"execution"`
	Invoice   bool             `json:"invoice"`
}

// CreateJob opens a job in Assessment and makes sure a client record exists for it
func (s *Service) CreateJob(ctx context.Context, actor domain.Actor, in CreateJobInput) (*domain.JobCard, error) {
	now := s.now()
	in.Client.Name = strings.TrimSpace(in.Client.Name)

	job := &domain.JobCard{
		ID:               s.newID(),
		RefNumber:        domain.OperatorJobRef(now, s.randN(domain.OperatorRefSuffixRange)),
		Client:           in.Client,
		AssessmentDate:   strings.TrimSpace(in.AssessmentDate),
		SelectedServices: in.SelectedServices,
		Notes:            in.Notes,
		Quote:            domain.NewQuote(s.settings.VATRate),
		Status:           domain.StatusAssessment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	job.Normalize()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	job.AppendHistory(now, "Job created", actor.FullName)

	return s.insert(ctx, job)
}

func (s *Service) insert(ctx context.Context, job *domain.JobCard) (*domain.JobCard, error) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	err := s.persistJob(ctx, job)
	s.ensureClient(ctx, job.Client)

	s.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("ref", job.RefNumber),
	)
	s.publish(ctx, events.TypeJobCreated, job, nil)
	return job.Clone(), err
}

// GetJob returns a copy of the job
func (s *Service) GetJob(ctx context.Context, id string) (*domain.JobCard, error) {
	job, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// ListJobs returns one page of the working set and the cursor of the next page, if any
func (s *Service) ListJobs(_ context.Context, filter JobFilter) ([]*domain.JobCard, *JobCursor) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	s.mu.RLock()
	matched := make([]*domain.JobCard, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if c := filter.Cursor; c != nil {
			if job.CreatedAt.After(c.CreatedAt) || (job.CreatedAt.Equal(c.CreatedAt) && job.ID >= c.JobID) {
				continue
			}
		}
		matched = append(matched, job)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	var next *JobCursor
	if len(matched) > filter.PageSize {
		matched = matched[:filter.PageSize]
		last := matched[len(matched)-1]
		next = &JobCursor{CreatedAt: last.CreatedAt, JobID: last.ID}
	}

	out := make([]*domain.JobCard, len(matched))
	for i, job := range matched {
		out[i] = job.Clone()
	}
	return out, next
}

// UpdateJob patches the client snapshot, dates, services and notes
func (s *Service) UpdateJob(ctx context.Context, actor domain.Actor, id string, in UpdateJobInput) (*domain.JobCard, error) {
	return s.mutate(ctx, id, func(job *domain.JobCard) error {
		if in.Client != nil {
			job.Client = *in.Client
			job.Client.Name = strings.TrimSpace(job.Client.Name)
		}
		if in.AssessmentDate != nil {
			job.AssessmentDate = strings.TrimSpace(*in.AssessmentDate)
		}
		if in.ServiceDate != nil {
			if err := validDate("serviceDate", *in.ServiceDate, false); err != nil {
				return err
			}
			job.ServiceDate = strings.TrimSpace(*in.ServiceDate)
		}
		if in.ServiceTime != nil {
			if err := validTime("serviceTime", *in.ServiceTime); err != nil {
				return err
			}
			job.ServiceTime = strings.TrimSpace(*in.ServiceTime)
		}
		if in.SelectedServices != nil {
			job.SelectedServices = in.SelectedServices
		}
		if in.Notes != nil {
			job.Notes = *in.Notes
		}
		if err := job.Validate(); err != nil {
			return err
		}
		job.AppendHistory(s.now(), "Job details updated", actor.FullName)
		return nil
	})
}

// DeleteJob removes the job from the working set and the store
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()

	if s.views != nil {
		s.views.Invalidate(ctx, id)
	}
	if err := s.store.Delete(ctx, docstore.CollectionJobs, id); err != nil {
		s.logger.Error("Failed to delete job",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
		return domain.NewPersistenceError(docstore.CollectionJobs, id, err)
	}
	return nil
}

// AdvanceStatus sets any known status. Skipping states is allowed; callers decide which transitions to offer.
func (s *Service) AdvanceStatus(ctx context.Context, actor domain.Actor, id string, status domain.JobStatus) (*domain.JobCard, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, domain.ErrInvalidStatus)
	}

	var from domain.JobStatus
	job, err := s.mutate(ctx, id, func(job *domain.JobCard) error {
		from = job.Status
		job.SetStatus(s.now(), status, actor.FullName)
		return nil
	})
	if job != nil {
		s.publishStatus(ctx, job, from, actor)
	}
	return job, err
}

// CancelJob moves a non-terminal job to Cancelled
func (s *Service) CancelJob(ctx context.Context, actor domain.Actor, id string) (*domain.JobCard, error) {
	var from domain.JobStatus
	job, err := s.mutate(ctx, id, func(job *domain.JobCard) error {
		if job.Status.IsTerminal() {
			return fmt.Errorf("job is %s: %w", job.Status.Label(), domain.ErrTerminalStatus)
		}
		from = job.Status
		job.SetStatus(s.now(), domain.StatusCancelled, actor.FullName)
		return nil
	})
	if job != nil {
		s.publishStatus(ctx, job, from, actor)
	}
	return job, err
}

// ApproveAndSchedule books the service date and moves the job to Job_Scheduled
func (s *Service) ApproveAndSchedule(ctx context.Context, actor domain.Actor, id, date, at string) (*domain.JobCard, error) {
	if err := validDate("date", date, true); err != nil {
		return nil, err
	}
	if err := validTime("time", at); err != nil {
		return nil, err
	}
	date, at = strings.TrimSpace(date), strings.TrimSpace(at)

	var from domain.JobStatus
	job, err := s.mutate(ctx, id, func(job *domain.JobCard) error {
		if job.Status.IsTerminal() {
			return fmt.Errorf("job is %s: %w", job.Status.Label(), domain.ErrTerminalStatus)
		}
		from = job.Status
		now := s.now()
		job.ServiceDate, job.ServiceTime = date, at

		when := date
		if at != "" {
			when += " " + at
		}
		job.AppendHistory(now, "Quote approved, scheduled for "+when, actor.FullName)
		job.SetStatus(now, domain.StatusJobScheduled, actor.FullName)
		return nil
	})
	if job != nil {
		s.publishStatus(ctx, job, from, actor)
	}
	return job, err
}

// CloseJob completes the job. With followUpMonths > 0 the matching client gets a follow-up date
// exactly that many calendar months after the close time.
func (s *Service) CloseJob(ctx context.Context, actor domain.Actor, id string, followUpMonths int) (*domain.JobCard, error) {
	if followUpMonths < 0 {
		return nil, domain.NewValidationError("followUpMonths", "must not be negative")
	}

	var followUp *time.Time
	job, err := s.mutate(ctx, id, func(job *domain.JobCard) error {
		if job.Status == domain.StatusCancelled {
			return fmt.Errorf("job is %s: %w", job.Status.Label(), domain.ErrTerminalStatus)
		}
		now := s.now()
		job.SetStatus(now, domain.StatusCompleted, actor.FullName)
		if followUpMonths > 0 {
			due := now.AddDate(0, followUpMonths, 0)
			followUp = &due
			job.AppendHistory(now, "Job closed, follow-up due "+due.Format(domain.DateLayout), actor.FullName)
		} else {
			job.AppendHistory(now, "Job closed", actor.FullName)
		}
		return nil
	})
	if job == nil {
		return nil, err
	}

	payload := events.JobClosed{ClientName: job.Client.Name}
	if followUp != nil {
		client, clientErr := s.setFollowUp(ctx, job.Client, *followUp)
		if err == nil {
			err = clientErr
		}
		payload.ClientID = client.ID
		payload.FollowUpDate = followUp
	}

	s.publish(ctx, events.TypeJobClosed, job, payload)
	return job, err
}

// Rebook opens a fresh job for the same client. Nothing but the client snapshot and
// selected services carries over; the source is referenced in the history only.
func (s *Service) Rebook(ctx context.Context, actor domain.Actor, sourceID string) (*domain.JobCard, error) {
	source, err := s.lookup(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	src := source.Clone()
	job := &domain.JobCard{
		ID:               s.newID(),
		RefNumber:        domain.RebookJobRef(now, s.randN(domain.RebookRefSuffixRange)),
		Client:           src.Client,
		AssessmentDate:   now.Format(domain.DateLayout),
		SelectedServices: src.SelectedServices,
		Quote:            domain.NewQuote(s.settings.VATRate),
		Status:           domain.StatusAssessment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	job.Normalize()
	job.AppendHistory(now, "Follow-up job created from "+src.RefNumber, actor.FullName)

	return s.insert(ctx, job)
}

// Features reports the gating state of the job
func (s *Service) Features(ctx context.Context, id string) (FeatureView, error) {
	job, err := s.lookup(ctx, id)
	if err != nil {
		return FeatureView{}, err
	}
	return FeatureView{
		Status:    job.Status,
		Label:     job.Status.Label(),
		Color:     job.Status.Color(),
		Execution: job.Status.Unlocks(domain.FeatureExecution),
		Invoice:   job.Status.Unlocks(domain.FeatureInvoice),
	}, nil
}

// QRPayload returns the client-facing viewer URL of the job
func (s *Service) QRPayload(ctx context.Context, id string) (string, error) {
	if _, err := s.lookup(ctx, id); err != nil {
		return "", err
	}
	return domain.QRPayload(s.settings.PublicOrigin, id), nil
}

func (s *Service) publishStatus(ctx context.Context, job *domain.JobCard, from domain.JobStatus, actor domain.Actor) {
	s.publish(ctx, events.TypeJobStatusChanged, job, events.StatusChanged{
		From: string(from),
		To:   string(job.Status),
		User: actor.FullName,
	})
}

func validDate(field, value string, required bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return domain.NewValidationError(field, "is required")
		}
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return nil
}

func validTime(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := time.Parse(domain.TimeLayout, value); err != nil {
		return domain.NewValidationError(field, "must be HH:MM")
	}
	return nil
}
