package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx)
// opened with the pgx driver.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert adds the item unless its id already exists.
func (r *PostgresRepository) Insert(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, item.ID, item.Name, nullString(item.Description), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return insertResult(res)
}

// SelectAll returns every item ordered by creation time, then id.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Item, error) {
	query := `SELECT id, name, description, created_at FROM items ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	result := []*models.Item{}
	for rows.Next() {
		var (
			item models.Item
			desc sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &desc, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Description = stringPtr(desc)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single item.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT id, name, description, created_at FROM items WHERE id = $1`

	var (
		item models.Item
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &desc, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select item: %w", err)
	}
	item.Description = stringPtr(desc)
	return &item, nil
}

// DeleteByID removes a single item.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return deleteResult(res)
}

func insertResult(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func deleteResult(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
