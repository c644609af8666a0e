package jobcard

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// clientList returns the client records in creation order
func (s *Service) clientList() []domain.ClientRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClientRecord, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListClients returns every client record
func (s *Service) ListClients(_ context.Context) []domain.ClientRecord {
	return s.clientList()
}

// findClient matches by email, then by exact name
func (s *Service) findClient(details domain.ClientDetails) (domain.ClientRecord, bool) {
	clients := s.clientList()
	if i := domain.MatchClient(clients, details.Email, details.Name); i >= 0 {
		return clients[i], true
	}
	return domain.ClientRecord{}, false
}

// ensureClient creates a client record for a job's client when none matches.
// A failed write is logged; the job itself is unaffected.
func (s *Service) ensureClient(ctx context.Context, details domain.ClientDetails) domain.ClientRecord {
	if c, ok := s.findClient(details); ok {
		return c
	}

	record := domain.ClientRecordFromJob(s.newID(), details, s.now())
	s.mu.Lock()
	s.clients[record.ID] = record
	s.mu.Unlock()

	_ = s.persist(ctx, docstore.CollectionClients, record.ID, record)
	return record
}

// setFollowUp attaches the follow-up date to the matching client, creating the client if needed
func (s *Service) setFollowUp(ctx context.Context, details domain.ClientDetails, due time.Time) (domain.ClientRecord, error) {
	record := s.ensureClient(ctx, details)
	record.NextFollowUpDate = &due
	record.UpdatedAt = s.now()

	s.mu.Lock()
	s.clients[record.ID] = record
	s.mu.Unlock()

	s.logger.Info("Client follow-up scheduled",
		slog.String("client_id", record.ID),
		slog.String("due", due.Format(domain.DateLayout)),
	)
	return record, s.persist(ctx, docstore.CollectionClients, record.ID, record)
}

// provisionClientUser returns the portal login for email, creating one with a random PIN if absent
func (s *Service) provisionClientUser(ctx context.Context, details domain.ClientDetails) (domain.ClientUser, bool, error) {
	email := strings.TrimSpace(details.Email)

	s.mu.RLock()
	for _, u := range s.clientUsers {
		if strings.EqualFold(u.Email, email) {
			s.mu.RUnlock()
			return u, false, nil
		}
	}
	s.mu.RUnlock()

	client := s.ensureClient(ctx, details)
	user := domain.ClientUser{
		ID:        s.newID(),
		Email:     email,
		Name:      details.Name,
		PIN:       domain.ClientPIN(s.randN(domain.PINRange)),
		ClientID:  client.ID,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.clientUsers[user.ID] = user
	s.mu.Unlock()

	s.logger.Info("Client portal user provisioned",
		slog.String("client_user_id", user.ID),
		slog.String("client_id", client.ID),
	)
	return user, true, s.persist(ctx, docstore.CollectionClientUsers, user.ID, user)
}

// ListServices returns the service catalog ordered by title
func (s *Service) ListServices(_ context.Context) []domain.ServiceOffering {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ServiceOffering, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// SaveService creates or replaces a service offering and its assessment template
func (s *Service) SaveService(ctx context.Context, svc domain.ServiceOffering) (domain.ServiceOffering, error) {
	svc.Title = strings.TrimSpace(svc.Title)
	if svc.Title == "" {
		return domain.ServiceOffering{}, domain.NewValidationError("title", "is required")
	}
	if svc.Icon == "" {
		svc.Icon = domain.IconGeneralPest
	}
	if !svc.Icon.Valid() {
		return domain.ServiceOffering{}, domain.NewValidationError("icon", "unknown icon "+string(svc.Icon))
	}
	if svc.ID == "" {
		svc.ID = s.newID()
	}

	s.mu.Lock()
	s.services[svc.ID] = svc
	s.mu.Unlock()

	return svc, s.persist(ctx, docstore.CollectionServices, svc.ID, svc)
}

func (s *Service) service(id string) (domain.ServiceOffering, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	return svc, ok
}
