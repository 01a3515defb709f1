// Package migrate runs per-module database migrations with golang-migrate.
//
// Each module keeps its SQL migrations in <module>/migrations and gets its
// own version table, so modules can be migrated and rolled back
// independently of one another.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/tiagomgelias/kernel/internal/logging"
	"github.com/tiagomgelias/kernel/internal/registry"
)

// DefaultDir is the migrations directory inside a module.
const DefaultDir = "migrations"

const tablePrefix = "schema_migrations_"

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Runner applies and rolls back module migrations against one database.
// A Runner without a database URL does nothing.
type Runner struct {
	DatabaseURL string
	Dir         string
	Logger      *log.Logger
}

// New returns a runner for the given postgres URL.
func New(databaseURL string, logger *log.Logger) *Runner {
	return &Runner{DatabaseURL: databaseURL, Dir: DefaultDir, Logger: logger}
}

// TableName returns the version table used for a module.
func TableName(module string) string {
	return tablePrefix + strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(module), "_"), "_")
}

// Migrate applies all pending up migrations of the module.
func (r *Runner) Migrate(m *registry.Descriptor, dir string) error {
	return r.run(m, dir, "migrate", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Rollback reverts every applied migration of the module.
func (r *Runner) Rollback(m *registry.Descriptor, dir string) error {
	return r.run(m, dir, "rollback", func(mg *migrate.Migrate) error { return mg.Down() })
}

func (r *Runner) run(m *registry.Descriptor, dir, action string, step func(*migrate.Migrate) error) error {
	if r.DatabaseURL == "" {
		return nil
	}
	src := filepath.Join(dir, r.migrationsDir())
	ok, err := hasMigrations(src)
	if err != nil || !ok {
		return err
	}

	db, err := sql.Open("postgres", r.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: TableName(m.Name)})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	mg, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(src), "postgres", driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", src, err)
	}
	defer mg.Close()

	err = step(mg)
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger().Debug("migrations up to date", "module", m.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, m.Name, err)
	}

	r.reportVersion(m.Name, mg)
	return nil
}

// versioner is the part of *migrate.Migrate used to report the outcome.
type versioner interface {
	Version() (uint, bool, error)
}

func (r *Runner) reportVersion(module string, v versioner) {
	version, dirty, err := v.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		r.logger().Info("migrations rolled back", "module", module)
	case err != nil:
		r.logger().Warn("migrations ran but the version could not be read", "module", module, "err", err)
	default:
		r.logger().Info("migrations applied", "module", module, "version", version, "dirty", dirty)
	}
}

func (r *Runner) migrationsDir() string {
	if r.Dir == "" {
		return DefaultDir
	}
	return r.Dir
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

// hasMigrations reports whether dir holds at least one SQL migration.
func hasMigrations(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "*.sql")
	if err != nil {
		return false, fmt.Errorf("listing %s: %w", dir, err)
	}
	return len(matches) > 0, nil
}
