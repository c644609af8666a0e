// Package docstore persists named JSON documents grouped in collections.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
)

// Collections
const (
	CollectionJobs          = "jobs"
	CollectionInventory     = "inventory"
	CollectionClients       = "clients"
	CollectionClientUsers   = "client_users"
	CollectionServices      = "services"
	CollectionEmployees     = "employees"
	CollectionBookings      = "bookings"
	CollectionLocations     = "locations"
	CollectionNotifications = "notifications"
	CollectionSettings      = "settings"
)

// ErrNotFound is returned by Get when no document exists
var ErrNotFound = errors.New("document not found")

// Store is the persistence collaborator. Writes are not retried.
type Store interface {
	// Load returns every document grouped for the admin panel bulk-load
	Load(ctx context.Context) (*Snapshot, error)
	// List returns the documents of one collection ordered by id
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	// Get decodes one document into dest
	Get(ctx context.Context, collection, id string, dest any) error
	// Upsert creates or replaces the document keyed by id
	Upsert(ctx context.Context, collection, id string, doc any) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Snapshot is the bulk-load payload
type Snapshot struct {
	Settings  map[string]json.RawMessage `json:"settings"`
	Jobs      []json.RawMessage          `json:"jobs"`
	Employees []json.RawMessage          `json:"employees"`
	Bookings  []json.RawMessage          `json:"bookings"`
	Locations []json.RawMessage          `json:"locations"`
	Inventory []json.RawMessage          `json:"inventory"`
	Clients   []json.RawMessage          `json:"clients"`
	Services  []json.RawMessage          `json:"services"`
}

// document is one stored row, shared by every backend
type document struct {
	Collection string `db:"collection"`
	ID         string `db:"id"`
	Body       string `db:"body"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Settings:  map[string]json.RawMessage{},
		Jobs:      []json.RawMessage{},
		Employees: []json.RawMessage{},
		Bookings:  []json.RawMessage{},
		Locations: []json.RawMessage{},
		Inventory: []json.RawMessage{},
		Clients:   []json.RawMessage{},
		Services:  []json.RawMessage{},
	}
}

// buildSnapshot groups documents. Collections outside the bulk-load set are skipped.
func buildSnapshot(docs []document) *Snapshot {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Collection != docs[j].Collection {
			return docs[i].Collection < docs[j].Collection
		}
		return docs[i].ID < docs[j].ID
	})

	snap := newSnapshot()
	for _, d := range docs {
		raw := json.RawMessage(d.Body)
		switch d.Collection {
		case CollectionSettings:
			snap.Settings[d.ID] = raw
		case CollectionJobs:
			snap.Jobs = append(snap.Jobs, raw)
		case CollectionEmployees:
			snap.Employees = append(snap.Employees, raw)
		case CollectionBookings:
			snap.Bookings = append(snap.Bookings, raw)
		case CollectionLocations:
			snap.Locations = append(snap.Locations, raw)
		case CollectionInventory:
			snap.Inventory = append(snap.Inventory, raw)
		case CollectionClients:
			snap.Clients = append(snap.Clients, raw)
		case CollectionServices:
			snap.Services = append(snap.Services, raw)
		}
	}
	return snap
}

func encode(doc any) (string, error) {
	if raw, ok := doc.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return "", errors.New("invalid json document")
		}
		return string(raw), nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListAs decodes every document of a collection into T
func ListAs[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	raws, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
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
