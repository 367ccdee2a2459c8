package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	pgUniqueViolation = "23505"
)

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	driver string
	logger *slog.Logger
}

// Options selects the driver and connection string for NewDBService.
type Options struct {
	Driver string
	DSN    string
}

// NewDBService opens the connection pool, pings the database and applies
// pending migrations.
func NewDBService(ctx context.Context, opts Options, logger *slog.Logger) (*DBService, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("missing connection string for driver %q", opts.Driver)
	}
	logger = logging.WithComponent(logger, logging.ComponentStorage)

	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverPostgres:
		db, err = sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("could not open db connection: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		db, err = sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("could not open db connection: %w", err)
		}
		// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := RunMigrations(opts.Driver, opts.DSN); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", opts.Driver)
	return &DBService{DB: db, driver: opts.Driver, logger: logger}, nil
}

// SQLiteDSN builds a modernc DSN for a database file, creating its directory.
func SQLiteDSN(path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create db directory: %w", err)
		}
	}
	return "file:" + path + "?" + sqlitePragmas, nil
}

// MemorySQLiteDSN names a shared-cache in-memory database. The database lives
// as long as at least one connection to it is open.
func MemorySQLiteDSN(name string) string {
	return "file:" + name + "?mode=memory&cache=shared&" + sqlitePragmas
}

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

func (s *DBService) Driver() string {
	return s.driver
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["driver"] = s.driver
	stats["message"] = "It's healthy"
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	s.logger.Info("closing database connection")
	return s.DB.Close()
}

// IsUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
