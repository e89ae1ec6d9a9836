package cats

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	goaway "github.com/TwiN/go-away"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"

	caterrs "github.com/jdholdren/cattery/internal/errors"
)

// Service holds the business rules for cats.
type Service struct {
	store Store
	cache *lru.Cache[string, Cat]
}

func NewService(store Store) *Service {
	cache, _ := lru.New[string, Cat](512)

	return &Service{
		store: store,
		cache: cache,
	}
}

var stripPolicy = bluemonday.StrictPolicy()

// Entity-encoded markup unwraps one level per pass.
const maxSanitizePasses = 8

// Removes any markup from user supplied text.
//
// Entities are decoded and the result stripped again until nothing changes,
// so markup sent HTML-encoded can't come back out of the unescape.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxSanitizePasses; i++ {
		clean := strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
		if clean == s {
			return clean
		}
		s = clean
	}

	// Still unwrapping, keep it escaped
	return stripPolicy.Sanitize(s)
}

// Create stores a new cat after cleaning up its name and breed.
func (s *Service) Create(ctx context.Context, cat Cat) (Cat, error) {
	cat.Name = sanitize(cat.Name)
	cat.Breed = sanitize(cat.Breed)

	if cat.Name == "" {
		return Cat{}, caterrs.E("name is required", http.StatusUnprocessableEntity, caterrs.Detail{Field: "name", Error: "empty after removing markup"})
	}
	if goaway.IsProfane(cat.Name) {
		return Cat{}, caterrs.E("profanity detected in name", http.StatusUnprocessableEntity, caterrs.Detail{Field: "name", Error: "profane"})
	}

	created, err := s.store.InsertCat(ctx, cat)
	if err != nil {
		return Cat{}, fmt.Errorf("error creating cat: %w", err)
	}
	s.cache.Add(created.ID, created)

	return created, nil
}

// FindAll returns a page of cats along with the total count.
func (s *Service) FindAll(ctx context.Context, limit, offset int) ([]Cat, int, error) {
	cats, err := s.store.Cats(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing cats: %w", err)
	}
	total, err := s.store.CountCats(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting cats: %w", err)
	}

	return cats, total, nil
}

// FindOne looks up a cat, preferring the cache.
func (s *Service) FindOne(ctx context.Context, id string) (Cat, error) {
	if cat, ok := s.cache.Get(id); ok {
		return cat, nil
	}

	cat, err := s.store.Cat(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Cat{}, caterrs.E(err, http.StatusNotFound)
	}
	if err != nil {
		return Cat{}, fmt.Errorf("error fetching cat: %w", err)
	}
	s.cache.Add(cat.ID, cat)

	return cat, nil
}

// Remove deletes a cat.
//
// The cache is evicted once the store is done, a concurrent lookup could
// otherwise put the cat back.
func (s *Service) Remove(ctx context.Context, id string) error {
	err := s.store.DeleteCat(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		s.cache.Remove(id)
	}
	if errors.Is(err, ErrNotFound) {
		return caterrs.E(err, http.StatusNotFound)
	}
	if err != nil {
		return fmt.Errorf("error deleting cat: %w", err)
	}

	return nil
}
