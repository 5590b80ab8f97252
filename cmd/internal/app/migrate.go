package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/migrations"
)

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs the embedded goose migrations against pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string, log Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(command)) {
	case "", MigrateUp:
		err := goose.UpContext(ctx, db, ".")
		if err == nil {
			log.Info("db.migrate.up.ok")
		}
		return err
	case MigrateDown:
		return goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("migrate: unknown command %q", command)
	}
}

// gooseLogger routes goose progress output into slog.
type gooseLogger struct {
	log Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info("db.migrate", "detail", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error("db.migrate.fatal", "detail", strings.TrimSpace(fmt.Sprintf(format, v...)))
}
