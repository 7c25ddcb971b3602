package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/repomanager"
)

// maxIDAttempts bounds id regeneration when a freshly generated id is
// already taken.
const maxIDAttempts = 3

var tracer = otel.Tracer("github.com/dmitrijs2005/gophforge/internal/server/services")

// ItemService persists items. Every call runs in its own transaction, which
// is committed before the call returns.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	newID func() string
	now   func() time.Time
}

func NewItemService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: repomanager,
		logger:      logger.With("module", "items"),
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// Create stores a new item. name must be non-blank; a nil description is
// stored as absent.
func (s *ItemService) Create(ctx context.Context, name string, description *string) (item *models.Item, err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Create")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	item = &models.Item{
		Name:        name,
		Description: description,
		// stored precision of both backends
		CreatedAt: s.now().Truncate(time.Microsecond),
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		item.ID = s.newID()

		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repomanager.Items(tx).Insert(ctx, item)
		})
		if err == nil {
			span.SetAttributes(attribute.String("item.id", item.ID))
			return item, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Warn(ctx, "generated item id already taken", "id", item.ID, "attempt", attempt)
	}

	return nil, fmt.Errorf("could not allocate item id after %d attempts: %w", maxIDAttempts, err)
}

// List returns all items, oldest first. The result is never nil.
func (s *ItemService) List(ctx context.Context) (list []*models.Item, err error) {
	ctx, span := tracer.Start(ctx, "ItemService.List")
	defer func() { endSpan(span, err) }()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		list, err = s.repomanager.Items(tx).SelectAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Item{}
	}
	span.SetAttributes(attribute.Int("items.count", len(list)))
	return list, nil
}

// Get returns the item with the given id or common.ErrorNotFound.
func (s *ItemService) Get(ctx context.Context, id string) (item *models.Item, err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Get")
	span.SetAttributes(attribute.String("item.id", id))
	defer func() { endSpan(span, err) }()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		item, err = s.repomanager.Items(tx).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item with the given id or returns common.ErrorNotFound.
func (s *ItemService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Delete")
	span.SetAttributes(attribute.String("item.id", id))
	defer func() { endSpan(span, err) }()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Items(tx).DeleteByID(ctx, id)
	})
}

// Ping reports whether the database answers.
func (s *ItemService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
