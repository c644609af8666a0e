package docstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(sqlx.NewDb(db, "postgres"), logger.NewNop())
	store.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return store, mock
}

type sample struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestSQLStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS documents")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Upsert(t *testing.T) {
	tests := []struct {
		name      string
		execErr   error
		wantErr   bool
		errString string
	}{
		{name: "success"},
		{
			name:      "write failure",
			execErr:   errors.New("disk full"),
			wantErr:   true,
			errString: "failed to upsert jobs/job-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)

			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection, id, body, updated_at)")).
				WithArgs("jobs", "job-1", `{"id":"job-1","name":"Acme"}`, sqlmock.AnyArg())
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := store.Upsert(context.Background(), CollectionJobs, "job-1", sample{ID: "job-1", Name: "Acme"})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.ErrorIs(t, err, tt.execErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLStore_UsesPostgresBinds(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("jobs", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(`{"id":"job-1","name":"Acme"}`))

	var got sample
	require.NoError(t, store.Get(context.Background(), CollectionJobs, "job-1", &got))
	assert.Equal(t, sample{ID: "job-1", Name: "Acme"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents")).
		WithArgs("jobs", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	var got sample
	err := store.Get(context.Background(), CollectionJobs, "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT collection, id, body FROM documents WHERE collection = $1 ORDER BY id")).
		WithArgs("inventory").
		WillReturnRows(sqlmock.NewRows([]string{"collection", "id", "body"}).
			AddRow("inventory", "a", `{"id":"a","name":"Gel"}`).
			AddRow("inventory", "b", `{"id":"b","name":"Dust"}`))

	items, err := ListAs[sample](context.Background(), store, CollectionInventory)
	require.NoError(t, err)
	assert.Equal(t, []sample{{ID: "a", Name: "Gel"}, {ID: "b", Name: "Dust"}}, items)
}

func TestSQLStore_Load(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT collection, id, body FROM documents ORDER BY collection, id")).
		WillReturnRows(sqlmock.NewRows([]string{"collection", "id", "body"}).
			AddRow("employees", "e1", `{"id":"e1"}`).
			AddRow("jobs", "j1", `{"id":"j1"}`).
			AddRow("notifications", "n1", `{"id":"n1"}`).
			AddRow("settings", "company", `{"name":"Acme Pest"}`))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Jobs, 1)
	assert.Len(t, snap.Employees, 1)
	assert.Empty(t, snap.Bookings)
	assert.JSONEq(t, `{"name":"Acme Pest"}`, string(snap.Settings["company"]))
}

func TestSQLStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("jobs", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), CollectionJobs, "job-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
