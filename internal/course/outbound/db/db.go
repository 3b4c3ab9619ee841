package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/coursebite/internal/course/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/sequence"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	seq  *sequence.Allocator
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, seq *sequence.Allocator, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, seq: seq, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return goerror.ErrConflict
		case "23503":
			// parent row vanished between lookup and insert
			return goerror.ErrNotFound
		}
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("course.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil &&
		!errors.Is(err, goerror.ErrNotFound) &&
		!errors.Is(err, goerror.ErrConflict) &&
		!entity.IsEnrollmentRejection(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return s.mapError(tx.Commit(ctx))
}
