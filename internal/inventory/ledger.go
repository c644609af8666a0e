// Package inventory maintains chemical and consumable stock.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/google/uuid"
)

// Ledger holds the inventory working set. Writes apply locally first, then persist.
type Ledger struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu    sync.RWMutex
	items map[string]domain.InventoryItem
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides id generation
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// NewLedger creates a new Ledger instance
func NewLedger(store docstore.Store, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		items:  map[string]domain.InventoryItem{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Warm replaces the working set with the stored inventory
func (l *Ledger) Warm(ctx context.Context) error {
	items, err := docstore.ListAs[domain.InventoryItem](ctx, l.store, docstore.CollectionInventory)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]domain.InventoryItem, len(items))
	for _, it := range items {
		l.items[it.ID] = it
	}

	l.logger.Info("Inventory loaded", slog.Int("items", len(items)))
	return nil
}

// List returns every item ordered by name
func (l *Ledger) List() []domain.InventoryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.InventoryItem, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns one item
func (l *Ledger) Get(id string) (domain.InventoryItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it, ok := l.items[id]
	if !ok {
		return domain.InventoryItem{}, fmt.Errorf("%q: %w", id, domain.ErrInventoryItemNotFound)
	}
	return it, nil
}

// Save creates or replaces an item from a direct edit
func (l *Ledger) Save(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return domain.InventoryItem{}, err
	}
	if item.ID == "" {
		item.ID = l.newID()
	}
	item.UpdatedAt = l.now()

	l.mu.Lock()
	l.items[item.ID] = item
	l.mu.Unlock()

	return item, l.persist(ctx, item)
}

// Delete removes an item. Usage records that reference it keep their captured name and cost.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	if _, ok := l.items[id]; !ok {
		l.mu.Unlock()
		return fmt.Errorf("%q: %w", id, domain.ErrInventoryItemNotFound)
	}
	delete(l.items, id)
	l.mu.Unlock()

	if err := l.store.Delete(ctx, docstore.CollectionInventory, id); err != nil {
		l.logger.Error("Failed to delete inventory item",
			slog.String("id", id),
			slog.Any("error", err),
		)
		return domain.NewPersistenceError(docstore.CollectionInventory, id, err)
	}
	return nil
}

// Decrement reduces stock by qty. There is no floor; stock may go negative.
func (l *Ledger) Decrement(ctx context.Context, id string, qty float64) (domain.InventoryItem, error) {
	if err := domain.CheckFinite("qtyUsed", qty); err != nil {
		return domain.InventoryItem{}, err
	}
	if qty <= 0 {
		return domain.InventoryItem{}, domain.NewValidationError("qtyUsed", "must be greater than 0")
	}

	l.mu.Lock()
	item, ok := l.items[id]
	if !ok {
		l.mu.Unlock()
		return domain.InventoryItem{}, fmt.Errorf("%q: %w", id, domain.ErrInventoryItemNotFound)
	}
	if err := domain.CheckFinite("qtyUsed", item.StockLevel-qty); err != nil {
		l.mu.Unlock()
		return domain.InventoryItem{}, err
	}
	item.StockLevel -= qty
	item.UpdatedAt = l.now()
	l.items[id] = item
	l.mu.Unlock()

	if item.StockLevel < 0 {
		l.logger.Warn("Inventory stock is negative",
			slog.String("id", id),
			slog.String("name", item.Name),
			slog.Float64("stock_level", item.StockLevel),
		)
	}

	return item, l.persist(ctx, item)
}

// Restock returns qty to an item, undoing a Decrement
func (l *Ledger) Restock(ctx context.Context, id string, qty float64) (domain.InventoryItem, error) {
	l.mu.Lock()
	item, ok := l.items[id]
	if !ok {
		l.mu.Unlock()
		return domain.InventoryItem{}, fmt.Errorf("%q: %w", id, domain.ErrInventoryItemNotFound)
	}
	item.StockLevel += qty
	item.UpdatedAt = l.now()
	l.items[id] = item
	l.mu.Unlock()

	return item, l.persist(ctx, item)
}

// LowStock returns the items below their reorder level
func (l *Ledger) LowStock() []domain.InventoryItem {
	var out []domain.InventoryItem
	for _, it := range l.List() {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	return out
}

func (l *Ledger) persist(ctx context.Context, item domain.InventoryItem) error {
	if err := l.store.Upsert(ctx, docstore.CollectionInventory, item.ID, item); err != nil {
		l.logger.Error("Failed to persist inventory item",
			slog.String("collection", docstore.CollectionInventory),
			slog.String("id", item.ID),
			slog.Any("error", err),
		)
		return domain.NewPersistenceError(docstore.CollectionInventory, item.ID, err)
	}
	return nil
}
