package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jdholdren/cattery/internal/cats"
)

const catNamespace = "-cat"

func (r Repo) InsertCat(ctx context.Context, cat cats.Cat) (cats.Cat, error) {
	const q = `INSERT INTO cats (id, name, age, breed, created_at)
	VALUES (:id, :name, :age, :breed, :created_at);`

	cat.ID = uuid.NewString() + catNamespace
	cat.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, q, cat); err != nil {
		return cats.Cat{}, fmt.Errorf("error inserting cat: %s", err)
	}

	return r.Cat(ctx, cat.ID)
}

func (r Repo) Cat(ctx context.Context, id string) (cats.Cat, error) {
	const q = `SELECT * FROM cats WHERE id = ?;`

	var cat cats.Cat
	err := r.db.GetContext(ctx, &cat, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return cats.Cat{}, cats.ErrNotFound
	}
	if err != nil {
		return cats.Cat{}, fmt.Errorf("error fetching cat: %s", err)
	}

	return cat, nil
}

// Cats lists cats oldest first.
func (r Repo) Cats(ctx context.Context, limit, offset int) ([]cats.Cat, error) {
	query, args, err := sq.Select("*").
		From("cats").
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var cs []cats.Cat
	if err := r.db.SelectContext(ctx, &cs, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting cats: %s", err)
	}

	return cs, nil
}

func (r Repo) CountCats(ctx context.Context) (int, error) {
	const q = "SELECT COUNT(*) FROM cats;"

	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting cats: %s", err)
	}

	return count, nil
}

func (r Repo) DeleteCat(ctx context.Context, id string) error {
	const q = `DELETE FROM cats WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("error deleting cat: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted rows: %s", err)
	}
	if n == 0 {
		return cats.ErrNotFound
	}

	return nil
}
