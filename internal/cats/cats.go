// Package cats is the cats feature module: storing, listing and looking up
// cats over HTTP.
package cats

import (
	"context"
	"errors"
	"time"

	"github.com/jdholdren/cattery/internal/module"
)

var (
	ErrNotFound = errors.New("cat not found")
)

type (
	// Cat is a single cat in the cattery.
	Cat struct {
		ID        string    `db:"id" json:"id"`
		Name      string    `db:"name" json:"name"`
		Age       int       `db:"age" json:"age"`
		Breed     string    `db:"breed" json:"breed"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
	}

	// Store persists cats. Lookups of unknown ids return [ErrNotFound].
	Store interface {
		InsertCat(ctx context.Context, cat Cat) (Cat, error)
		Cat(ctx context.Context, id string) (Cat, error)
		Cats(ctx context.Context, limit, offset int) ([]Cat, error)
		CountCats(ctx context.Context) (int, error)
		DeleteCat(ctx context.Context, id string) error
	}
)

// Module is the cats feature module. It expects a [Store] to be provided.
var Module = module.Definition{
	Name:        "cats",
	Controllers: []any{NewController},
	Providers:   []any{NewService},
}
