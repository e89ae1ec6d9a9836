package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/cattery/internal/cats"
)

func newTestRepo(t *testing.T) Repo {
	t.Helper()

	dbx, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	return New(dbx)
}

func TestCats_InsertAndFetch(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	created, err := repo.InsertCat(ctx, cats.Cat{Name: "Luna", Age: 3, Breed: "Siamese"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Luna", created.Name)
	assert.Equal(t, 3, created.Age)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Cat(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Siamese", got.Breed)

	_, err = repo.Cat(ctx, "missing")
	assert.ErrorIs(t, err, cats.ErrNotFound)
}

func TestCats_ListAndCount(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	for _, name := range []string{"Luna", "Oliver", "Pepper"} {
		_, err := repo.InsertCat(ctx, cats.Cat{Name: name, Age: 1})
		require.NoError(t, err)
	}

	count, err := repo.CountCats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, err := repo.Cats(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Luna", page[0].Name)
	assert.Equal(t, "Oliver", page[1].Name)

	page, err = repo.Cats(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Pepper", page[0].Name)
}

func TestCats_Delete(t *testing.T) {
	var (
		ctx  = context.Background()
		repo = newTestRepo(t)
	)

	created, err := repo.InsertCat(ctx, cats.Cat{Name: "Luna"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCat(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteCat(ctx, created.ID), cats.ErrNotFound)

	_, err = repo.Cat(ctx, created.ID)
	assert.ErrorIs(t, err, cats.ErrNotFound)
}
