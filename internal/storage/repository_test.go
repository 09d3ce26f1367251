package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"expensesync/internal/core"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(filepath.Join(s.T().TempDir(), "data", "test.db"))
	require.NoError(s.T(), err, "failed to create test database")
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func expense(id, date string) core.Expense {
	d, _ := core.ParseDate(date)
	return core.Expense{
		ID:         id,
		Title:      "Expense " + id,
		Amount:     decimal.RequireFromString("4.50"),
		Date:       d,
		CategoryID: "c1",
		CreatedAt:  1,
		UpdatedAt:  1,
	}
}

func (s *RepositoryTestSuite) TestCategoryCRUD() {
	t := s.T()
	c := core.Category{ID: "c1", Name: "Food", Icon: "restaurant", Color: "#4CAF50", CreatedAt: 10, UpdatedAt: 10}
	require.NoError(t, s.repo.InsertCategory(s.ctx, c))

	got, err := s.repo.GetCategory(s.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	c.Name = "Groceries"
	c.UpdatedAt = 20
	require.NoError(t, s.repo.UpdateCategory(s.ctx, c))
	got, err = s.repo.GetCategory(s.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	assert.Equal(t, int64(20), got.UpdatedAt)

	require.NoError(t, s.repo.DeleteCategory(s.ctx, "c1"))
	_, err = s.repo.GetCategory(s.ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestUpdateMissingCategory() {
	err := s.repo.UpdateCategory(s.ctx, core.Category{ID: "nope", Name: "x"})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestListCategoriesOrderedByName() {
	t := s.T()
	for _, c := range []core.Category{
		{ID: "3", Name: "Zoo"},
		{ID: "1", Name: "Apple"},
		{ID: "2", Name: "Mango", IsSync: true},
	} {
		require.NoError(t, s.repo.InsertCategory(s.ctx, c))
	}

	all, err := s.repo.ListCategories(s.ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Apple", "Mango", "Zoo"}, []string{all[0].Name, all[1].Name, all[2].Name})

	unsynced, err := s.repo.ListUnsyncedCategories(s.ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 2)

	require.NoError(t, s.repo.MarkCategorySynced(s.ctx, "1"))
	unsynced, err = s.repo.ListUnsyncedCategories(s.ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "3", unsynced[0].ID)
}

func (s *RepositoryTestSuite) TestSeedCategoriesOnlyWhenEmpty() {
	t := s.T()
	defs := core.DefaultCategories()
	for i := range defs {
		defs[i].ID = string(rune('a' + i))
	}

	seeded, err := s.repo.SeedCategories(s.ctx, defs)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.repo.SeedCategories(s.ctx, defs)
	require.NoError(t, err)
	assert.False(t, seeded)

	n, err := s.repo.CountCategories(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func (s *RepositoryTestSuite) TestSeedCategoriesConcurrent() {
	t := s.T()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			defs := core.DefaultCategories()
			for i := range defs {
				defs[i].ID = string(rune('a'+w)) + string(rune('a'+i))
			}
			_, err := s.repo.SeedCategories(s.ctx, defs)
			assert.NoError(t, err)
		}(w)
	}
	wg.Wait()

	n, err := s.repo.CountCategories(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func (s *RepositoryTestSuite) TestExpenseRoundTrip() {
	t := s.T()
	e := expense("e1", "2024-01-10")
	e.Notes = "oat milk"
	require.NoError(t, s.repo.InsertExpense(s.ctx, e))

	got, err := s.repo.GetExpense(s.ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Expense e1", got.Title)
	assert.True(t, got.Amount.Equal(e.Amount))
	assert.True(t, got.Date.Equal(e.Date))
	assert.Equal(t, "c1", got.CategoryID)
	assert.Equal(t, "oat milk", got.Notes)
	assert.False(t, got.IsSync)

	_, err = s.repo.GetExpense(s.ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestExpenseFilters() {
	t := s.T()
	for _, e := range []core.Expense{
		expense("jan1", "2024-01-01"),
		expense("jan31", "2024-01-31"),
		expense("feb1", "2024-02-01"),
		expense("dec31", "2023-12-31"),
	} {
		require.NoError(t, s.repo.InsertExpense(s.ctx, e))
	}
	other := expense("other", "2024-01-15")
	other.CategoryID = "c2"
	require.NoError(t, s.repo.InsertExpense(s.ctx, other))

	inJan, err := s.repo.ListExpensesByDateRange(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)
	ids := make([]string, 0, len(inJan))
	for _, e := range inJan {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"jan31", "other", "jan1"}, ids)

	byCat, err := s.repo.ListExpensesByCategory(s.ctx, "c2")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "other", byCat[0].ID)

	all, err := s.repo.ListExpenses(s.ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "feb1", all[0].ID)
}

func (s *RepositoryTestSuite) TestDeleteExpenseCascadesImages() {
	t := s.T()
	require.NoError(t, s.repo.InsertExpense(s.ctx, expense("e1", "2024-01-10")))
	require.NoError(t, s.repo.InsertExpense(s.ctx, expense("e2", "2024-01-11")))
	for _, img := range []core.ExpenseImage{
		{ID: "i1", ExpenseID: "e1", ImageURI: "/a.jpg", CreatedAt: 1},
		{ID: "i2", ExpenseID: "e1", ImageURI: "/b.jpg", CreatedAt: 2},
		{ID: "i3", ExpenseID: "e2", ImageURI: "/c.jpg", CreatedAt: 3},
	} {
		require.NoError(t, s.repo.InsertExpenseImage(s.ctx, img))
	}

	require.NoError(t, s.repo.DeleteExpense(s.ctx, "e1"))

	imgs, err := s.repo.ListExpenseImages(s.ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, imgs)

	_, err = s.repo.GetExpenseImage(s.ctx, "i1")
	assert.ErrorIs(t, err, ErrNotFound)

	imgs, err = s.repo.ListExpenseImages(s.ctx, "e2")
	require.NoError(t, err)
	assert.Len(t, imgs, 1)
}

func (s *RepositoryTestSuite) TestReinsertExpenseKeepsImages() {
	t := s.T()
	e := expense("e1", "2024-01-10")
	require.NoError(t, s.repo.InsertExpense(s.ctx, e))
	require.NoError(t, s.repo.InsertExpenseImage(s.ctx, core.ExpenseImage{ID: "i1", ExpenseID: "e1", CreatedAt: 1}))

	e.Title = "Changed"
	require.NoError(t, s.repo.InsertExpense(s.ctx, e))

	imgs, err := s.repo.ListExpenseImages(s.ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, imgs, 1)
}

func (s *RepositoryTestSuite) TestImageForUnknownExpenseFails() {
	err := s.repo.InsertExpenseImage(s.ctx, core.ExpenseImage{ID: "i1", ExpenseID: "ghost", CreatedAt: 1})
	assert.Error(s.T(), err)
}

func (s *RepositoryTestSuite) TestMarkExpenseImageSynced() {
	t := s.T()
	require.NoError(t, s.repo.InsertExpense(s.ctx, expense("e1", "2024-01-10")))
	require.NoError(t, s.repo.InsertExpenseImage(s.ctx, core.ExpenseImage{ID: "i1", ExpenseID: "e1", CreatedAt: 1}))

	unsynced, err := s.repo.ListUnsyncedExpenseImages(s.ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)

	require.NoError(t, s.repo.MarkExpenseImageSynced(s.ctx, "i1", "https://x/storage/v1/object/public/b/e1/a.jpg"))

	img, err := s.repo.GetExpenseImage(s.ctx, "i1")
	require.NoError(t, err)
	assert.True(t, img.IsSync)
	assert.True(t, img.Uploaded())
	assert.False(t, img.IsRemote)

	unsynced, err = s.repo.ListUnsyncedExpenseImages(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func (s *RepositoryTestSuite) TestMarkExpenseSynced() {
	t := s.T()
	require.NoError(t, s.repo.InsertExpense(s.ctx, expense("e1", "2024-01-10")))
	require.NoError(t, s.repo.MarkExpenseSynced(s.ctx, "e1"))

	unsynced, err := s.repo.ListUnsyncedExpenses(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.InsertCategory(context.Background(), core.Category{ID: "c1", Name: "Food"}))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	n, err := repo.CountCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
