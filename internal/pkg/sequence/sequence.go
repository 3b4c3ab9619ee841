// Package sequence allocates race-free ordinals and seats inside a parent scope.
//
// Every operation takes a transaction-scoped Postgres advisory lock on the scope
// key, so callers for the same parent serialize and callers for different
// parents proceed in parallel. The caller must perform its insert in the same
// transaction; the lock is released on commit or rollback.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidScope is returned when a scope is missing required identifiers.
var ErrInvalidScope = errors.New("sequence: invalid scope")

// Tx is the subset of pgx.Tx used by the allocator.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Scope identifies a parent and the child table it owns.
type Scope struct {
	// Name namespaces the lock key, e.g. "course.edition_modules".
	Name string
	// Table is the child table.
	Table string
	// ParentColumn references the parent in Table.
	ParentColumn string
	// ParentID is the parent key value.
	ParentID int64
	// OrdinalColumn holds the child ordinal. Required by NextOrdinal.
	OrdinalColumn string
	// ActiveColumn, when set, restricts ReserveCapacity to rows where it is true.
	ActiveColumn string
}

// Key is the advisory lock key of the scope.
func (s Scope) Key() string {
	return fmt.Sprintf("%s:%d", s.Name, s.ParentID)
}

func (s Scope) validate() error {
	if s.Name == "" || s.Table == "" || s.ParentColumn == "" {
		return ErrInvalidScope
	}
	return nil
}

// Allocator hands out ordinals and capacity reservations.
type Allocator struct {
	ins instrument.Instrumentation
}

// New creates an Allocator.
func New(ins instrument.Instrumentation) *Allocator {
	return &Allocator{ins: ins}
}

func (a *Allocator) startSpan(ctx context.Context, name string, scope Scope) (context.Context, trace.Span) {
	return a.ins.Tracer("pkg.sequence").Start(ctx, name, trace.WithAttributes(
		attribute.String("sequence.scope", scope.Key()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Lock takes the exclusive scope lock for the rest of the transaction.
func (a *Allocator) Lock(ctx context.Context, tx Tx, scope Scope) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", scope.Key())
	return err
}

// NextOrdinal returns max(ordinal)+1 within the scope, or 1 for an empty scope.
func (a *Allocator) NextOrdinal(ctx context.Context, tx Tx, scope Scope) (_ int32, err error) {
	ctx, span := a.startSpan(ctx, "NextOrdinal", scope)
	defer func() { endSpan(span, err) }()

	if err = scope.validate(); err != nil {
		return 0, err
	}
	if scope.OrdinalColumn == "" {
		return 0, ErrInvalidScope
	}

	if err = a.Lock(ctx, tx, scope); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1",
		pgx.Identifier{scope.OrdinalColumn}.Sanitize(),
		pgx.Identifier{scope.Table}.Sanitize(),
		pgx.Identifier{scope.ParentColumn}.Sanitize(),
	)

	var next int32
	if err = tx.QueryRow(ctx, query, scope.ParentID).Scan(&next); err != nil {
		return 0, err
	}

	return next, nil
}

// Count returns the number of (active) rows in the scope without locking.
func (a *Allocator) Count(ctx context.Context, tx Tx, scope Scope) (int32, error) {
	if err := scope.validate(); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COUNT(*)::INT FROM %s WHERE %s = $1",
		pgx.Identifier{scope.Table}.Sanitize(),
		pgx.Identifier{scope.ParentColumn}.Sanitize(),
	)
	if scope.ActiveColumn != "" {
		query += fmt.Sprintf(" AND %s", pgx.Identifier{scope.ActiveColumn}.Sanitize())
	}

	var count int32
	if err := tx.QueryRow(ctx, query, scope.ParentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReserveCapacity locks the scope and reports whether one more row fits. A nil
// capacity is unbounded. On true the caller must insert its row before commit.
func (a *Allocator) ReserveCapacity(ctx context.Context, tx Tx, scope Scope, capacity *int32) (_ bool, err error) {
	ctx, span := a.startSpan(ctx, "ReserveCapacity", scope)
	defer func() { endSpan(span, err) }()

	if err = scope.validate(); err != nil {
		return false, err
	}

	if err = a.Lock(ctx, tx, scope); err != nil {
		return false, err
	}

	if capacity == nil {
		return true, nil
	}

	count, err := a.Count(ctx, tx, scope)
	if err != nil {
		return false, err
	}

	return count < *capacity, nil
}
