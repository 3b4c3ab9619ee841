// Package migration applies the embedded SQL schema using golang-migrate.
package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

var (
	// ErrNoChange is returned when the schema is already at the requested version.
	ErrNoChange = migrate.ErrNoChange

	// ErrMissingDSN is returned when no database url is provided.
	ErrMissingDSN = errors.New("migration: database url is empty")

	// ErrInvalidDirection is returned for a direction other than up or down.
	ErrInvalidDirection = errors.New("migration: direction must be up or down")
)

// Direction is the migration direction.
type Direction string

const (
	// Up applies every pending migration.
	Up Direction = "up"
	// Down reverts every applied migration.
	Down Direction = "down"
)

// Run migrates the database at dsn in the given direction. Being already at the
// target version is not an error.
func Run(dsn string, direction Direction) error {
	if dsn == "" {
		return ErrMissingDSN
	}
	if direction != Up && direction != Down {
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, direction)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == Up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
