package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/dbx"
	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/items"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/repomanager"
)

// -------- test fakes --------

type fakeItemsRepo struct {
	items.Repository
	insertErrs []error
	inserted   []*models.Item
	selectErr  error
}

func (f *fakeItemsRepo) Insert(ctx context.Context, it *models.Item) error {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	cp := *it
	f.inserted = append(f.inserted, &cp)
	return nil
}

func (f *fakeItemsRepo) SelectAll(ctx context.Context) ([]*models.Item, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return nil, nil
}

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	items *fakeItemsRepo
}

func (m *fakeRepoMgr) Items(db dbx.DBTX) items.Repository { return m.items }

func newSQLiteItemService(t *testing.T) *ItemService {
	t.Helper()
	db, rm, err := repomanager.Open(context.Background(), "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewItemService(db, rm, logging.NewNopLogger())
}

func newMockItemService(t *testing.T, repo *fakeItemsRepo) (*ItemService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewItemService(db, &fakeRepoMgr{items: repo}, logging.NewNopLogger()), mock
}

func strPtr(s string) *string { return &s }

// -------- end-to-end against sqlite --------

func TestItemService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	created, err := s.Create(ctx, "Widget", strPtr("blue"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("item mismatch (-created +got):\n%s", diff)
	}
}

func TestItemService_DescriptionAbsentVersusEmpty(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	absent, err := s.Create(ctx, "a", nil)
	require.NoError(t, err)
	empty, err := s.Create(ctx, "b", strPtr(""))
	require.NoError(t, err)

	got, err := s.Get(ctx, absent.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	got, err = s.Get(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "", *got.Description)
}

func TestItemService_DeleteThenGetNotFound(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	created, err := s.Create(ctx, "Widget", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = s.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestItemService_UnknownID(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	_, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), common.ErrorNotFound)
}

func TestItemService_ListEmptyAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		it, err := s.Create(ctx, fmt.Sprintf("item-%d", i), nil)
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, it := range list {
		assert.Equal(t, ids[i], it.ID)
		assert.True(t, base.Add(time.Duration(i+1)*time.Second).Equal(it.CreatedAt))
	}
}

func TestItemService_CreateValidation(t *testing.T) {
	repo := &fakeItemsRepo{}
	s, mock := newMockItemService(t, repo)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := s.Create(context.Background(), name, nil)
		assert.ErrorIs(t, err, common.ErrorValidation)
	}
	assert.Empty(t, repo.inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]struct{}{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			it, err := s.Create(ctx, fmt.Sprintf("w%d", i), nil)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[it.ID] = struct{}{}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, ids, n)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

// -------- id collisions and failures --------

func TestItemService_Create_RegeneratesIDOnCollision(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteItemService(t)

	first, err := s.Create(ctx, "first", nil)
	require.NoError(t, err)

	ids := []string{first.ID, first.ID, "fresh-id"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	second, err := s.Create(ctx, "second", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh-id", second.ID)

	// the original row is untouched
	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestItemService_Create_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := &fakeItemsRepo{insertErrs: []error{common.ErrorAlreadyExists, common.ErrorAlreadyExists, common.ErrorAlreadyExists}}
	s, mock := newMockItemService(t, repo)
	for i := 0; i < maxIDAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	_, err := s.Create(context.Background(), "w", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Empty(t, repo.inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Create_RepoErrorRollsBack(t *testing.T) {
	boom := errors.New("disk full")
	repo := &fakeItemsRepo{insertErrs: []error{boom}}
	s, mock := newMockItemService(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), "w", nil)
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Create_CommitsBeforeReturn(t *testing.T) {
	repo := &fakeItemsRepo{}
	s, mock := newMockItemService(t, repo)
	s.newID = func() string { return "id-1" }
	at := time.Date(2024, 1, 2, 3, 4, 5, 6789, time.UTC)
	s.now = func() time.Time { return at }

	mock.ExpectBegin()
	mock.ExpectCommit()

	it, err := s.Create(context.Background(), "w", strPtr("d"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", it.ID)
	assert.Equal(t, at.Truncate(time.Microsecond), it.CreatedAt)
	require.Len(t, repo.inserted, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Create_BeginError(t *testing.T) {
	s, mock := newMockItemService(t, &fakeItemsRepo{})
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := s.Create(context.Background(), "w", nil)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestItemService_List_Error(t *testing.T) {
	s, mock := newMockItemService(t, &fakeItemsRepo{selectErr: errors.New("bad")})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.List(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_List_NilBecomesEmpty(t *testing.T) {
	s, mock := newMockItemService(t, &fakeItemsRepo{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestItemService_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	s := NewItemService(db, &fakeRepoMgr{}, logging.NewNopLogger())

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, s.Ping(context.Background()))
}
