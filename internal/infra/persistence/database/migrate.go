package database

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// Migrator applies the embedded SQL migrations for one driver.
type Migrator struct {
	db      *sql.DB
	dialect string
	fsys    fs.FS
}

// NewMigrator selects the migration set matching driver.
func NewMigrator(db *sql.DB, driver string) (*Migrator, error) {
	var dialect string
	switch driver {
	case DriverPostgres:
		dialect = "pgx"
	case DriverMySQL:
		dialect = "mysql"
	default:
		return nil, errors.Errorf("no migrations for driver %q", driver)
	}

	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}

	return &Migrator{db: db, dialect: dialect, fsys: fsys}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func() error {
		return goose.UpContext(ctx, m.db, ".")
	}, "migrate up")
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(func() error {
		return goose.DownContext(ctx, m.db, ".")
	}, "migrate down")
}

// Status prints the applied state of every migration through goose's logger.
func (m *Migrator) Status(ctx context.Context) error {
	return m.run(func() error {
		return goose.StatusContext(ctx, m.db, ".")
	}, "migration status")
}

func (m *Migrator) run(fn func() error, operation string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(m.fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(m.dialect); err != nil {
		return errors.Wrap(err, "failed to set migration dialect")
	}

	if err := fn(); err != nil {
		return errors.Wrap(err, operation)
	}

	return nil
}
