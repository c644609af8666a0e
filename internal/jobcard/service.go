// Package jobcard runs the job card lifecycle: status machine, checkpoints, quoting,
// material usage, payment and closure.
//
// Every mutation follows the same two-phase contract. The change is applied to a copy
// of the job, validated, and swapped into the in-process working set. The job is then
// written to the store. A failed write is logged and returned as a *domain.PersistenceError
// alongside the updated job; the working set keeps the change. Concurrent edits to the
// same job are last-write-wins.
package jobcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/events"
	"github.com/google/uuid"
)

// Inventory is the stock ledger used by material usage and inventory line items
type Inventory interface {
	Get(id string) (domain.InventoryItem, error)
	Decrement(ctx context.Context, id string, qty float64) (domain.InventoryItem, error)
	Restock(ctx context.Context, id string, qty float64) (domain.InventoryItem, error)
}

// Uploader stores a file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
}

// ViewCache caches public job views
type ViewCache interface {
	Fetch(ctx context.Context, jobID string, dest any, loader func(context.Context) (any, error)) error
	Invalidate(ctx context.Context, jobID string)
}

// Settings are the business defaults applied to new jobs and documents
type Settings struct {
	Company      documents.Company
	VATRate      float64
	DialCode     string
	PublicOrigin string
}

// Dependencies holds the collaborators of the service
type Dependencies struct {
	Store     docstore.Store
	Inventory Inventory
	Uploader  Uploader
	Publisher events.Publisher
	Views     ViewCache
	Renderer  *documents.Renderer
	Settings  Settings
	Logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom overrides the source of reference suffixes and PINs. randN returns a value in [0, n).
func WithRandom(randN func(n int) int) Option {
	return func(s *Service) { s.randN = randN }
}

// WithIDGenerator overrides entity id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service is the job card state machine
type Service struct {
	store     docstore.Store
	inventory Inventory
	uploader  Uploader
	publisher events.Publisher
	views     ViewCache
	renderer  *documents.Renderer
	settings  Settings
	logger    *slog.Logger

	now   func() time.Time
	randN func(n int) int
	newID func() string

	mu          sync.RWMutex
	jobs        map[string]*domain.JobCard
	clients     map[string]domain.ClientRecord
	clientUsers map[string]domain.ClientUser
	services    map[string]domain.ServiceOffering
}

// NewService creates a new Service instance
func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		store:       deps.Store,
		inventory:   deps.Inventory,
		uploader:    deps.Uploader,
		publisher:   deps.Publisher,
		views:       deps.Views,
		renderer:    deps.Renderer,
		settings:    deps.Settings,
		logger:      deps.Logger,
		now:         time.Now,
		randN:       rand.Intn,
		newID:       uuid.NewString,
		jobs:        map[string]*domain.JobCard{},
		clients:     map[string]domain.ClientRecord{},
		clientUsers: map[string]domain.ClientUser{},
		services:    map[string]domain.ServiceOffering{},
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.settings.DialCode == "" {
		s.settings.DialCode = "+27"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Warm replaces the working set with the stored jobs, clients, client users and services
func (s *Service) Warm(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	jobs, err := decodeAll[domain.JobCard](snap.Jobs)
	if err != nil {
		return fmt.Errorf("failed to decode jobs: %w", err)
	}
	clients, err := decodeAll[domain.ClientRecord](snap.Clients)
	if err != nil {
		return fmt.Errorf("failed to decode clients: %w", err)
	}
	services, err := decodeAll[domain.ServiceOffering](snap.Services)
	if err != nil {
		return fmt.Errorf("failed to decode services: %w", err)
	}
	users, err := docstore.ListAs[domain.ClientUser](ctx, s.store, docstore.CollectionClientUsers)
	if err != nil {
		return fmt.Errorf("failed to load client users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make(map[string]*domain.JobCard, len(jobs))
	for i := range jobs {
		job := jobs[i]
		job.Normalize()
		s.jobs[job.ID] = &job
	}
	s.clients = make(map[string]domain.ClientRecord, len(clients))
	for _, c := range clients {
		s.clients[c.ID] = c
	}
	s.services = make(map[string]domain.ServiceOffering, len(services))
	for _, svc := range services {
		s.services[svc.ID] = svc
	}
	s.clientUsers = make(map[string]domain.ClientUser, len(users))
	for _, u := range users {
		s.clientUsers[u.ID] = u
	}

	s.logger.Info("Job card working set loaded",
		slog.Int("jobs", len(s.jobs)),
		slog.Int("clients", len(s.clients)),
		slog.Int("services", len(s.services)),
		slog.Int("client_users", len(s.clientUsers)),
	)
	return nil
}

// lookup returns the working set entry, falling back to the store. Callers must not mutate it.
func (s *Service) lookup(ctx context.Context, id string) (*domain.JobCard, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if ok {
		return job, nil
	}

	var stored domain.JobCard
	if err := s.store.Get(ctx, docstore.CollectionJobs, id, &stored); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", id, domain.ErrJobNotFound)
		}
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	stored.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jobs[id]; ok {
		return existing, nil
	}
	s.jobs[id] = &stored
	return &stored, nil
}

// mutate applies fn to a copy of the job, swaps it into the working set and persists it.
// An error from fn leaves the job untouched.
func (s *Service) mutate(ctx context.Context, id string, fn func(job *domain.JobCard) error) (*domain.JobCard, error) {
	current, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	out := next.Clone()

	s.mu.Lock()
	if _, ok := s.jobs[id]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%q: %w", id, domain.ErrJobNotFound)
	}
	s.jobs[id] = next
	s.mu.Unlock()

	return out, s.persistJob(ctx, next)
}

func (s *Service) persistJob(ctx context.Context, job *domain.JobCard) error {
	if s.views != nil {
		s.views.Invalidate(ctx, job.ID)
	}
	return s.persist(ctx, docstore.CollectionJobs, job.ID, job)
}

func (s *Service) persist(ctx context.Context, collection, id string, doc any) error {
	if err := s.store.Upsert(ctx, collection, id, doc); err != nil {
		s.logger.Error("Failed to persist document",
			slog.String("collection", collection),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return domain.NewPersistenceError(collection, id, err)
	}
	return nil
}

// publish emits an event. Failures are logged and never fail the operation.
func (s *Service) publish(ctx context.Context, t events.Type, job *domain.JobCard, payload any) {
	var jobID, ref string
	if job != nil {
		jobID, ref = job.ID, job.RefNumber
	}

	evt, err := events.New(s.newID(), t, jobID, ref, payload, s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, evt)
	}
	if err != nil {
		s.logger.Warn("Failed to publish event",
			slog.String("type", string(t)),
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
	}
}

func decodeAll[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
