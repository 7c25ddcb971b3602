// Package repomanager vends dialect-specific repositories bound to a
// dbx.DBTX and runs the matching schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/items"
)

// RepositoryManager hides the SQL dialect from the services. Repositories
// are cheap to construct, so callers ask for one per transaction.
type RepositoryManager interface {
	Dialect() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	Items(db dbx.DBTX) items.Repository
}
