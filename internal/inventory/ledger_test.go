package inventory

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type failingStore struct {
	docstore.Store
	err error
}

func (f failingStore) Upsert(context.Context, string, string, any) error { return f.err }
func (f failingStore) Delete(context.Context, string, string) error      { return f.err }

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, store docstore.Store) *Ledger {
	t.Helper()
	return NewLedger(store, logger.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "inv-new" }),
	)
}

func seed(t *testing.T, l *Ledger, item domain.InventoryItem) domain.InventoryItem {
	t.Helper()
	saved, err := l.Save(context.Background(), item)
	require.NoError(t, err)
	return saved
}

func TestLedger_Save(t *testing.T) {
	tests := []struct {
		name      string
		item      domain.InventoryItem
		wantField string
	}{
		{name: "valid", item: domain.InventoryItem{Name: "Fipronil Gel", Unit: "g", CostPerUnit: 2}},
		{name: "missing name", item: domain.InventoryItem{Unit: "g"}, wantField: "name"},
		{name: "missing unit", item: domain.InventoryItem{Name: "Gel"}, wantField: "unit"},
		{name: "negative cost", item: domain.InventoryItem{Name: "Gel", Unit: "g", CostPerUnit: -1}, wantField: "costPerUnit"},
		{name: "bad expiry", item: domain.InventoryItem{Name: "Gel", Unit: "g", ExpiryDate: "01/05/2024"}, wantField: "expiryDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, docstore.NewMemoryStore())
			saved, err := l.Save(context.Background(), tt.item)

			if tt.wantField != "" {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Empty(t, l.List())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "inv-new", saved.ID)
			assert.Equal(t, fixedNow, saved.UpdatedAt)
		})
	}
}

func TestLedger_Decrement(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements and persists", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		l := newLedger(t, store)
		item := seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", CostPerUnit: 10, StockLevel: 20, MinStockLevel: 5})

		updated, err := l.Decrement(ctx, item.ID, 5)
		require.NoError(t, err)
		assert.InDelta(t, 15, updated.StockLevel, 1e-9)

		var stored domain.InventoryItem
		require.NoError(t, store.Get(ctx, docstore.CollectionInventory, "inv-1", &stored))
		assert.InDelta(t, 15, stored.StockLevel, 1e-9)
	})

	t.Run("allows negative stock", func(t *testing.T) {
		l := newLedger(t, docstore.NewMemoryStore())
		seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", StockLevel: 2, MinStockLevel: 5})

		updated, err := l.Decrement(ctx, "inv-1", 5)
		require.NoError(t, err)
		assert.InDelta(t, -3, updated.StockLevel, 1e-9)
		assert.Len(t, l.LowStock(), 1)
	})

	t.Run("unknown item", func(t *testing.T) {
		l := newLedger(t, docstore.NewMemoryStore())
		_, err := l.Decrement(ctx, "missing", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		l := newLedger(t, docstore.NewMemoryStore())
		seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", StockLevel: 2})
		_, err := l.Decrement(ctx, "inv-1", 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("non finite quantity or result", func(t *testing.T) {
		l := newLedger(t, docstore.NewMemoryStore())
		seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", StockLevel: -1e308})

		for _, qty := range []float64{math.Inf(1), math.NaN(), 1e308} {
			_, err := l.Decrement(ctx, "inv-1", qty)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}

		got, err := l.Get("inv-1")
		require.NoError(t, err)
		assert.InDelta(t, -1e308, got.StockLevel, 1)
	})

	t.Run("restock undoes decrement", func(t *testing.T) {
		l := newLedger(t, docstore.NewMemoryStore())
		seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", StockLevel: 20})

		_, err := l.Decrement(ctx, "inv-1", 5)
		require.NoError(t, err)
		got, err := l.Restock(ctx, "inv-1", 5)
		require.NoError(t, err)
		assert.InDelta(t, 20, got.StockLevel, 1e-9)

		_, err = l.Restock(ctx, "missing", 1)
		assert.ErrorIs(t, err, domain.ErrInventoryItemNotFound)
	})

	t.Run("write failure keeps local change", func(t *testing.T) {
		store := &failingStore{Store: docstore.NewMemoryStore()}
		l := newLedger(t, store)
		seed(t, l, domain.InventoryItem{ID: "inv-1", Name: "Gel", Unit: "g", StockLevel: 20})

		store.err = errors.New("connection reset")
		updated, err := l.Decrement(ctx, "inv-1", 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.InDelta(t, 15, updated.StockLevel, 1e-9)

		got, err := l.Get("inv-1")
		require.NoError(t, err)
		assert.InDelta(t, 15, got.StockLevel, 1e-9)
	})
}

func TestLedger_WarmAndDelete(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, docstore.CollectionInventory, "b", domain.InventoryItem{ID: "b", Name: "bait", Unit: "pc"}))
	require.NoError(t, store.Upsert(ctx, docstore.CollectionInventory, "a", domain.InventoryItem{ID: "a", Name: "Aerosol", Unit: "can"}))

	l := newLedger(t, store)
	require.NoError(t, l.Warm(ctx))

	items := l.List()
	require.Len(t, items, 2)
	assert.Equal(t, "Aerosol", items[0].Name)

	require.NoError(t, l.Delete(ctx, "a"))
	_, err := l.Get("a")
	assert.ErrorIs(t, err, domain.ErrInventoryItemNotFound)
	assert.ErrorIs(t, l.Delete(ctx, "a"), domain.ErrNotFound)
}

func TestExportXLSX(t *testing.T) {
	retail := 25.0
	items := []domain.InventoryItem{
		{ID: "a", Name: "Gel", Unit: "g", CostPerUnit: 10, RetailPricePerUnit: &retail, StockLevel: 2, MinStockLevel: 5},
		{ID: "b", Name: "Dust", Unit: "kg", CostPerUnit: 4, StockLevel: 30, MinStockLevel: 5},
	}
	usages := []UsageRow{{
		JobRef: "JOB-2405-12",
		Client: "Acme Foods",
		Usage:  domain.MaterialUsage{ItemName: "Gel", QtyUsed: 5, Unit: "g", Cost: 50, Date: fixedNow},
	}}

	data, err := ExportXLSX(items, usages)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetStock, SheetUsage}, f.GetSheetList())

	name, err := f.GetCellValue(SheetStock, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Gel", name)

	low, err := f.GetCellValue(SheetStock, "L2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", low)

	ref, err := f.GetCellValue(SheetUsage, "B2")
	require.NoError(t, err)
	assert.Equal(t, "JOB-2405-12", ref)

	cost, err := f.GetCellValue(SheetUsage, "G2")
	require.NoError(t, err)
	assert.Equal(t, "50", cost)
}
