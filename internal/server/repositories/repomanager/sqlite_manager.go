package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/items"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Dialect() string { return "sqlite" }

func (m *SQLiteRepositoryManager) Items(db dbx.DBTX) items.Repository {
	return items.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "sqlite3", "sqlite")
}
