package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Backend describes how a DSN maps onto a database/sql driver.
type Backend struct {
	Driver  string
	Source  string
	Manager RepositoryManager
}

// ParseDSN picks the backend for dsn:
//
//	postgres://..., postgresql://...  -> pgx
//	sqlite://./app.db, sqlite:///./app.db, sqlite:////abs/app.db -> modernc sqlite
//	file:app.db?..., plain paths, :memory: -> modernc sqlite
func ParseDSN(dsn string) (*Backend, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("empty database DSN")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return &Backend{Driver: "pgx", Source: dsn, Manager: NewPostgresRepositoryManager()}, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		// SQLAlchemy-style URLs put an extra slash before the path.
		if strings.HasPrefix(path, "/") {
			path = path[1:]
		}
		if path == "" {
			return nil, fmt.Errorf("sqlite DSN %q has no path", dsn)
		}
		return &Backend{Driver: "sqlite", Source: path, Manager: NewSQLiteRepositoryManager()}, nil
	case strings.Contains(dsn, "://"):
		return nil, fmt.Errorf("unsupported database DSN scheme: %q", MaskDSN(dsn))
	default:
		return &Backend{Driver: "sqlite", Source: dsn, Manager: NewSQLiteRepositoryManager()}, nil
	}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to the database named by dsn, verifies the connection and
// applies migrations. The caller owns the returned *sql.DB.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	b, err := ParseDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlOpen(b.Driver, b.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if b.Driver == "sqlite" {
		// one writer at a time; also keeps ":memory:" on a single database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := b.Manager.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, b.Manager, nil
}

var dsnPassword = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)

// MaskDSN hides the password part of a URL-style DSN.
func MaskDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, "://$1:****@")
}

// BackendName returns a human-readable name of the database behind dsn.
func BackendName(dsn string) string {
	b, err := ParseDSN(dsn)
	if err != nil {
		return "Unknown"
	}
	if b.Driver == "pgx" {
		return "PostgreSQL"
	}
	return "SQLite"
}
