package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
)

// SQLiteRepository implements Repository for SQLite. created_at is stored as
// RFC 3339 text with the server's UTC offset and read back in local time.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert adds the item unless its id already exists.
func (r *SQLiteRepository) Insert(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (id, name, description, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, nullString(item.Description), item.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return insertResult(res)
}

// SelectAll returns every item in insertion order.
func (r *SQLiteRepository) SelectAll(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	result := []*models.Item{}
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single item.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM items WHERE id = ?`, id)
	item, err := scanSQLiteItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return item, nil
}

// DeleteByID removes a single item.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return deleteResult(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteItem(s scanner) (*models.Item, error) {
	var (
		item      models.Item
		desc      sql.NullString
		createdAt string
	)
	if err := s.Scan(&item.ID, &item.Name, &desc, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	item.Description = stringPtr(desc)
	item.CreatedAt = ts.In(time.Local)
	return &item, nil
}
