// internal/resolver/resolver.go
// Package resolver turns free-text food queries into macro contributions by
// searching the FoodData Central database on api.data.gov.
package resolver

import (
	"context"
	"errors"

	"nutrition-tracker/internal/models"
)

// Resolver answers a free-text food query with one resolved contribution.
// Implementations must not mutate any session state; a failed lookup leaves
// the caller exactly where it was.
type Resolver interface {
	Resolve(ctx context.Context, query string) (models.Record, error)
}

var (
	// ErrNoMatch means the database had no foods for the query.
	ErrNoMatch = errors.New("no foods found")

	// ErrIncompleteData means a food matched but all its macro values were
	// zero, which is a data gap rather than a real zero-macro food.
	ErrIncompleteData = errors.New("nutrition data appears incomplete")
)

// Hint annotates a lookup failure with guidance, or returns "" when the
// error speaks for itself.
func Hint(err error) string {
	if errors.Is(err, ErrNoMatch) {
		return `Try being more specific (e.g., "chicken breast" instead of just "chicken")`
	}
	return ""
}
