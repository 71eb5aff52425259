package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/repository/mysql"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the tables and stored procedures in MySQL",
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			db, err := mysql.Open(mysql.Options{
				Host:         cfg.DBHost,
				Port:         cfg.DBPort,
				User:         cfg.DBUser,
				Password:     cfg.DBPassword,
				Name:         cfg.DBName,
				MaxOpenConns: 1,
			})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := migrateDatabase(c.Context, db, cfg.DBCheckTimeout); err != nil {
				return err
			}
			slog.Info("database migrations applied", "database", cfg.DBName)
			return nil
		},
	}
}

// migrateDatabase checks that db answers within timeout, then migrates it.
func migrateDatabase(ctx context.Context, db domain.Database, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	err := db.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return db.Migrate(ctx)
}
