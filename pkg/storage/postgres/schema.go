package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/matzehuels/stamboom/pkg/storage"
)

// migrations holds the family_* table layout. Text columns are nullable, so
// reads COALESCE them to empty strings.
//
//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies pending schema migrations. Cancelling ctx stops after the
// migration in progress.
func (r *Repository) Migrate(ctx context.Context, logger *log.Logger) error {
	dbURL, err := migrateURL(r.db.Config().ConnString())
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return storage.Internal(err, "migrate: open migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return storage.Internal(err, "migrate: connect")
	}
	defer m.Close()
	if logger != nil {
		m.Log = migrateLogger{logger}
	}

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return storage.Internal(err, "migrate: read version")
	}
	if dirty {
		return storage.Internal(fmt.Errorf("schema version %d is dirty", from), "migrate")
	}

	done := make(chan error, 1)
	go func() { done <- m.Up() }()
	select {
	case err = <-done:
	case <-ctx.Done():
		m.GracefulStop <- true
		err = <-done
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return storage.Internal(err, "migrate")
	}
	if logger != nil {
		to, _, _ := m.Version()
		logger.Info("schema migrated", "from", from, "to", to)
	}
	return nil
}

// migrateURL rewrites a postgres:// URL to the pgx5:// scheme the migration
// driver is registered under.
func migrateURL(dsn string) (string, error) {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest, nil
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn, nil
	}
	return "", fmt.Errorf("postgres: migrations need a postgres:// URL, got a keyword DSN")
}

type migrateLogger struct{ l *log.Logger }

func (m migrateLogger) Printf(format string, v ...any) {
	m.l.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

func (m migrateLogger) Verbose() bool { return m.l.GetLevel() <= log.DebugLevel }
