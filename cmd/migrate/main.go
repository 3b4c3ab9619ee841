// Command migrate applies the embedded database migrations.
//
// It reads DATABASE_URL and MIGRATE_DIRECTION (up or down, default up) from the
// environment.
package main

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/shandysiswandi/coursebite/internal/pkg/migration"
)

type config struct {
	DatabaseURL string              `env:"DATABASE_URL,required,notEmpty"`
	Direction   migration.Direction `env:"MIGRATE_DIRECTION" envDefault:"up"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to parse migrate config", "error", err)
		os.Exit(1)
	}

	if err := migration.Run(cfg.DatabaseURL, cfg.Direction); err != nil {
		logger.Error("failed to run migration", "direction", cfg.Direction, "error", err)
		os.Exit(1)
	}

	logger.Info("migration finished", "direction", cfg.Direction)
}
