// Package items provides the SQL repositories backing the Item Store.
package items

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophforge/internal/server/models"
)

// Repository is the persistence contract for items. Implementations are bound
// to a dbx.DBTX, so the caller decides the transaction scope.
type Repository interface {
	// Insert stores a new item. It returns common.ErrorAlreadyExists when the
	// id is taken and never overwrites the existing row.
	Insert(ctx context.Context, item *models.Item) error
	SelectAll(ctx context.Context) ([]*models.Item, error)
	// GetByID and DeleteByID return common.ErrorNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Item, error)
	DeleteByID(ctx context.Context, id string) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
