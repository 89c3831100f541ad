package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = v.(uuid.UUID)
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type fakeQuerier struct {
	lastSQL  string
	lastArgs []any
	row      fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	q.lastArgs = args
	return q.row
}

func TestPGXDirectory(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	record := []any{id, "acme", "Acme Inc", "active", "pro", "eu-west", created}

	t.Run("nil pool rejected", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewPGXDirectory(nil)
		require.ErrorIs(t, err, tenant.ErrDirectoryRequired)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{row: fakeRow{values: record}}
		dir, err := tenant.NewPGXDirectory(q)
		require.NoError(t, err)

		got, err := dir.ByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "acme", got.Key)
		assert.Equal(t, tenant.StatusActive, got.Status)
		assert.Equal(t, plan.TierPro, got.Plan)
		assert.Equal(t, "eu-west", got.Region)
		assert.Contains(t, q.lastSQL, "WHERE id = $1")
		assert.Equal(t, []any{id}, q.lastArgs)
	})

	t.Run("by key", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{row: fakeRow{values: record}}
		dir, err := tenant.NewPGXDirectory(q)
		require.NoError(t, err)

		got, err := dir.ByKey(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.Key)
		assert.Contains(t, q.lastSQL, "WHERE key = $1")
		assert.Equal(t, []any{"acme"}, q.lastArgs)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
		dir, err := tenant.NewPGXDirectory(q)
		require.NoError(t, err)

		_, err = dir.ByKey(context.Background(), "ghost")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("query failure wrapped", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{row: fakeRow{err: errors.New("connection reset")}}
		dir, err := tenant.NewPGXDirectory(q)
		require.NoError(t, err)

		_, err = dir.ByID(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
