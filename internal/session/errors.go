// internal/session/errors.go
package session

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyHistory is returned by UndoLast when there is nothing to undo.
	ErrEmptyHistory = errors.New("nothing to undo: no food entries found")

	// ErrNothingToClear is returned by ClearAll when the totals are already zero.
	ErrNothingToClear = errors.New("nothing to clear: no food entries found")

	// ErrNotFound is returned when a profile id does not resolve.
	ErrNotFound = errors.New("profile not found")

	// ErrNoFoodLogged gates analysis until at least one macro is nonzero.
	ErrNoFoodLogged = errors.New("no food logged yet")
)

// ValidationError reports the attributes still missing before an analysis
// request can be issued.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing information: " + strings.Join(e.Missing, ", ")
}
