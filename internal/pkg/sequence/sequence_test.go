package sequence

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupItems(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := pgtest.New(t)

	_, err := pool.Exec(context.Background(), `
		CREATE TABLE seq_items (
			id        BIGSERIAL PRIMARY KEY,
			parent_id BIGINT  NOT NULL,
			ordinal   INTEGER NOT NULL,
			active    BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE (parent_id, ordinal)
		)`)
	require.NoError(t, err)
	return pool
}

func itemScope(parentID int64) Scope {
	return Scope{
		Name:          "test.items",
		Table:         "seq_items",
		ParentColumn:  "parent_id",
		ParentID:      parentID,
		OrdinalColumn: "ordinal",
		ActiveColumn:  "active",
	}
}

func TestScope_Validate(t *testing.T) {
	a := New(instrument.NewNoop())

	_, err := a.NextOrdinal(context.Background(), nil, Scope{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = a.ReserveCapacity(context.Background(), nil, Scope{Table: "t"}, nil)
	assert.ErrorIs(t, err, ErrInvalidScope)

	assert.Equal(t, "course.edition_modules:9", Scope{Name: "course.edition_modules", ParentID: 9}.Key())
}

func TestAllocator_NextOrdinalConcurrent(t *testing.T) {
	pool := setupItems(t)
	a := New(instrument.NewNoop())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
				next, err := a.NextOrdinal(ctx, tx, itemScope(1))
				if err != nil {
					return err
				}
				_, err = tx.Exec(ctx, "INSERT INTO seq_items (parent_id, ordinal) VALUES ($1, $2)", 1, next)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := pool.Query(ctx, "SELECT ordinal FROM seq_items WHERE parent_id = 1")
	require.NoError(t, err)
	got, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	require.NoError(t, err)

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := make([]int32, n)
	for i := range want {
		want[i] = int32(i + 1)
	}
	assert.Equal(t, want, got)

	// other scopes start from 1
	var first int32
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		first, err = a.NextOrdinal(ctx, tx, itemScope(2))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), first)
}

func TestAllocator_ReserveCapacityFull(t *testing.T) {
	pool := setupItems(t)
	a := New(instrument.NewNoop())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := pool.Exec(ctx, "INSERT INTO seq_items (parent_id, ordinal) VALUES (7, $1)", i)
		require.NoError(t, err)
	}
	// inactive rows do not hold a seat
	_, err := pool.Exec(ctx, "INSERT INTO seq_items (parent_id, ordinal, active) VALUES (7, 4, FALSE)")
	require.NoError(t, err)

	capacity := int32(3)
	var granted atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
				ok, err := a.ReserveCapacity(ctx, tx, itemScope(7), &capacity)
				if ok {
					granted.Add(1)
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, granted.Load())
}

func TestAllocator_ReserveCapacityNeverOversells(t *testing.T) {
	pool := setupItems(t)
	a := New(instrument.NewNoop())
	ctx := context.Background()

	capacity := int32(3)
	var granted atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
				ok, err := a.ReserveCapacity(ctx, tx, itemScope(8), &capacity)
				if err != nil || !ok {
					return err
				}
				next, err := a.NextOrdinal(ctx, tx, itemScope(8))
				if err != nil {
					return err
				}
				if _, err := tx.Exec(ctx, "INSERT INTO seq_items (parent_id, ordinal) VALUES (8, $1)", next); err != nil {
					return err
				}
				granted.Add(1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), granted.Load())
}

func TestAllocator_ReserveCapacityUnbounded(t *testing.T) {
	pool := setupItems(t)
	a := New(instrument.NewNoop())
	ctx := context.Background()

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		ok, err := a.ReserveCapacity(ctx, tx, itemScope(9), nil)
		assert.True(t, ok)
		return err
	})
	require.NoError(t, err)
}
