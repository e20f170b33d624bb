// internal/session/session.go
// Package session implements the nutrition session state engine: the macro
// ledger with undoable history, the direct-macro command parser, and the
// profile store, all persisted through an injected key-value capability.
//
// A Session is owned by its caller and is not self-locking. One completed
// mutation at a time is the contract; the presentation layer serializes
// access when operations can interleave.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/storage"
)

// Persisted record keys. The names are the session's storage contract; each
// record is independently readable and independently recoverable.
const (
	keyTotals   = "dailyNutrition"
	keyUserInfo = "userInfo"
	keyProfiles = "profiles"
	keyActiveID = "lastProfileId"
	keyHistory  = "conversationHistory"
)

// Confirmer asks the user to approve a destructive operation. It returns
// false on decline or cancellation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// AutoConfirm approves every prompt. Presentation layers that collect the
// user's answer before calling in use this and gate at their own edge.
var AutoConfirm Confirmer = ConfirmerFunc(func(string) bool { return true })

// Session is one user's tracking state: running totals, undoable history,
// loose attributes, and the profile collection with its active pointer.
type Session struct {
	totals          models.Totals
	history         []models.HistoryEntry
	attributes      models.UserAttributes
	profiles        []models.Profile
	activeProfileID string

	store   storage.KV
	confirm Confirmer
	entropy *rand.Rand
	now     func() time.Time
}

// Load constructs a Session from the persisted snapshot in store, falling
// back to defaults for anything absent or corrupt. Only store I/O failures
// are returned; unparseable records are discarded and logged.
func Load(ctx context.Context, store storage.KV, confirm Confirmer) (*Session, error) {
	if confirm == nil {
		confirm = AutoConfirm
	}
	s := &Session{
		store:   store,
		confirm: confirm,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	if _, err := s.loadRecord(ctx, keyTotals, &s.totals); err != nil {
		return err
	}
	if _, err := s.loadRecord(ctx, keyHistory, &s.history); err != nil {
		return err
	}
	if _, err := s.loadRecord(ctx, keyProfiles, &s.profiles); err != nil {
		return err
	}

	// The active pointer is stored as a plain string, not JSON.
	rawID, ok, err := s.store.Get(ctx, keyActiveID)
	if err != nil {
		return fmt.Errorf("read %s: %w", keyActiveID, err)
	}
	if ok {
		s.activeProfileID = string(rawID)
	}

	var loose models.UserAttributes
	haveLoose, err := s.loadRecord(ctx, keyUserInfo, &loose)
	if err != nil {
		return err
	}

	// Profile data wins over the stored loose-attribute record. A pointer
	// that no longer resolves is cleared, not an error.
	if p, ok := s.profileByID(s.activeProfileID); ok {
		s.attributes = p.Attributes
	} else {
		s.activeProfileID = ""
		if haveLoose {
			s.attributes = loose
		}
	}

	return nil
}

// loadRecord reads one persisted record into v. A missing record leaves v at
// its zero value. A record that cannot be parsed is discarded the same way,
// logged, and never fails the load.
func (s *Session) loadRecord(ctx context.Context, key string, v interface{}) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("session: discarding corrupt %s record: %v", key, err)
		return false, nil
	}
	return true, nil
}

// save writes the full snapshot. Every mutating operation calls it
// synchronously, so readers of the store never see a partially applied
// mutation across the records.
func (s *Session) save(ctx context.Context) error {
	records := []struct {
		key string
		v   interface{}
	}{
		{keyTotals, s.totals},
		{keyHistory, s.history},
		{keyUserInfo, s.attributes},
		{keyProfiles, s.profiles},
	}
	for _, rec := range records {
		raw, err := json.Marshal(rec.v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.key, err)
		}
		if err := s.store.Set(ctx, rec.key, raw); err != nil {
			return fmt.Errorf("persist %s: %w", rec.key, err)
		}
	}
	if err := s.store.Set(ctx, keyActiveID, []byte(s.activeProfileID)); err != nil {
		return fmt.Errorf("persist %s: %w", keyActiveID, err)
	}
	return nil
}

// Totals returns the current running totals.
func (s *Session) Totals() models.Totals {
	return s.totals
}

// History returns a copy of the logged contributions, oldest first.
func (s *Session) History() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Add applies one contribution to the running totals and logs it at the top
// of the undo stack. Negative macro fields are accepted; they rely on the
// same zero floor as undo rather than up-front rejection.
func (s *Session) Add(ctx context.Context, input string, rec models.Record) error {
	s.totals = s.totals.Add(rec)
	s.history = append(s.history, models.HistoryEntry{
		Input:     input,
		Nutrition: rec,
		Timestamp: s.now(),
	})
	return s.save(ctx)
}

// UndoLast pops the most recent entry and subtracts its macros from the
// totals. The zero floor wins over exact reversal: when a macro would go
// negative the post-undo state is not a perfect inverse of the pre-add state.
func (s *Session) UndoLast(ctx context.Context) (models.HistoryEntry, error) {
	if len(s.history) == 0 {
		return models.HistoryEntry{}, ErrEmptyHistory
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.totals = s.totals.Subtract(last.Nutrition)
	return last, s.save(ctx)
}

// ClearAll zeroes the totals and empties the history after confirmation.
// When the totals are already zero it returns ErrNothingToClear without
// prompting; when the user declines it reports false with no state change.
func (s *Session) ClearAll(ctx context.Context) (bool, error) {
	if s.totals.IsZero() {
		return false, ErrNothingToClear
	}
	if !s.confirm.Confirm("Are you sure you want to clear all food entries? This cannot be undone.") {
		return false, nil
	}
	s.totals = models.Totals{}
	s.history = nil
	return true, s.save(ctx)
}

// Reset unconditionally zeroes the totals and history. It is the explicit
// day-rollover operation and asks for no confirmation.
func (s *Session) Reset(ctx context.Context) error {
	s.totals = models.Totals{}
	s.history = nil
	return s.save(ctx)
}

// Attributes returns the authoritative attribute set for a recommendation
// request: the active profile's snapshot when one is set, the loose
// attributes otherwise.
func (s *Session) Attributes() models.UserAttributes {
	if p, ok := s.profileByID(s.activeProfileID); ok {
		return p.Attributes
	}
	return s.attributes
}

// UserInfo returns the loose attribute set as last entered, independent of
// any active profile.
func (s *Session) UserInfo() models.UserAttributes {
	return s.attributes
}

// SetAttributes replaces the loose attributes wholesale and persists.
func (s *Session) SetAttributes(ctx context.Context, attrs models.UserAttributes) error {
	s.attributes = attrs
	return s.save(ctx)
}

// CanAnalyze reports whether a recommendation request may be issued: every
// attribute populated and at least one macro logged. A *ValidationError
// carries the exact missing-field list.
func (s *Session) CanAnalyze() error {
	if missing := s.Attributes().Missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if s.totals.IsZero() {
		return ErrNoFoodLogged
	}
	return nil
}
