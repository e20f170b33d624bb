package session

import (
	"context"
	"errors"
	"testing"

	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/storage"
)

func newTestSession(t *testing.T) (*Session, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	s, err := Load(context.Background(), kv, AutoConfirm)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return s, kv
}

func TestAddAccumulatesAndRounds(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if err := s.Add(ctx, "a", models.Record{Carbs: 10.123, Protein: 5.2, Fat: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, "b", models.Record{Carbs: 0.111, Protein: 0.333, Fat: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := s.Totals()
	want := models.Totals{Carbs: 10.23, Protein: 5.53, Fat: 3}
	if got != want {
		t.Errorf("totals = %+v, want %+v", got, want)
	}
	if len(s.History()) != 2 {
		t.Errorf("history length = %d, want 2", len(s.History()))
	}
}

func TestAddUndoScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if err := s.Add(ctx, "meal", models.Record{Carbs: 10, Protein: 5, Fat: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Totals(); got != (models.Totals{Carbs: 10, Protein: 5, Fat: 2}) {
		t.Errorf("totals after add = %+v", got)
	}
	if len(s.History()) != 1 {
		t.Fatalf("history length = %d, want 1", len(s.History()))
	}

	entry, err := s.UndoLast(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if entry.Input != "meal" {
		t.Errorf("undone entry input = %q", entry.Input)
	}
	if !s.Totals().IsZero() {
		t.Errorf("totals after undo = %+v, want zero", s.Totals())
	}
	if len(s.History()) != 0 {
		t.Errorf("history length = %d, want 0", len(s.History()))
	}

	// Second undo fails and changes nothing.
	if _, err := s.UndoLast(ctx); !errors.Is(err, ErrEmptyHistory) {
		t.Errorf("expected ErrEmptyHistory, got %v", err)
	}
	if !s.Totals().IsZero() || len(s.History()) != 0 {
		t.Error("failed undo must leave state unchanged")
	}
}

func TestNegativeDirectEntryFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if err := s.Add(ctx, "-20g fat", models.Record{Fat: -20}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Totals(); got.Fat != 0 {
		t.Errorf("fat = %v, want floor at 0", got.Fat)
	}
	if len(s.History()) != 1 {
		t.Error("negative entry must still be logged")
	}
}

func TestUndoClampIsNotExactInverse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	s.Add(ctx, "2g carbs", models.Record{Carbs: 2})
	s.Add(ctx, "-8g carbs", models.Record{Carbs: -8})
	if got := s.Totals().Carbs; got != 0 {
		t.Fatalf("carbs = %v, want 0 after clamped subtraction", got)
	}

	// Undoing the -8 adds the full 8 back: the zero floor already absorbed
	// part of the subtraction, so undo lands on 8, not on the pre-add 2.
	if _, err := s.UndoLast(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := s.Totals().Carbs; got != 8 {
		t.Errorf("carbs after clamped undo = %v, want 8", got)
	}
}

func TestUndoRestoresExactlyWithoutClamp(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	s.Add(ctx, "a", models.Record{Carbs: 12.34, Protein: 5.67, Fat: 8.9})
	before := s.Totals()
	s.Add(ctx, "b", models.Record{Carbs: 1.11, Protein: 2.22, Fat: 3.33})
	if _, err := s.UndoLast(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := s.Totals(); got != before {
		t.Errorf("totals = %+v, want %+v", got, before)
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	// Nothing logged yet.
	if _, err := s.ClearAll(ctx); !errors.Is(err, ErrNothingToClear) {
		t.Errorf("expected ErrNothingToClear, got %v", err)
	}

	s.Add(ctx, "a", models.Record{Carbs: 10})
	cleared, err := s.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !cleared {
		t.Error("expected cleared")
	}
	if !s.Totals().IsZero() || len(s.History()) != 0 {
		t.Error("clear must zero totals and empty history")
	}

	// Clear then add starts a fresh ledger.
	s.Add(ctx, "b", models.Record{Carbs: 3.456})
	if len(s.History()) != 1 {
		t.Errorf("history length = %d, want 1", len(s.History()))
	}
	if got := s.Totals().Carbs; got != 3.46 {
		t.Errorf("carbs = %v, want 3.46", got)
	}
}

func TestClearAllDeclined(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s, err := Load(ctx, kv, ConfirmerFunc(func(string) bool { return false }))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	s.Add(ctx, "a", models.Record{Carbs: 10})
	cleared, err := s.ClearAll(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared {
		t.Error("declined confirmation must not clear")
	}
	if s.Totals().Carbs != 10 || len(s.History()) != 1 {
		t.Error("declined clear must leave state unchanged")
	}
}

func TestResetNeedsNoConfirmation(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s, err := Load(ctx, kv, ConfirmerFunc(func(string) bool { return false }))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	s.Add(ctx, "a", models.Record{Carbs: 10, Protein: 1, Fat: 1})
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !s.Totals().IsZero() || len(s.History()) != 0 {
		t.Error("reset must zero totals and empty history unconditionally")
	}
}

func TestCanAnalyze(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	err := s.CanAnalyze()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Missing) != 7 {
		t.Errorf("missing fields = %v, want all 7", vErr.Missing)
	}
	if vErr.Missing[0] != "Gender" || vErr.Missing[6] != "Food Preference" {
		t.Errorf("missing fields out of order: %v", vErr.Missing)
	}

	s.SetAttributes(ctx, completeAttributes())
	if err := s.CanAnalyze(); !errors.Is(err, ErrNoFoodLogged) {
		t.Errorf("expected ErrNoFoodLogged, got %v", err)
	}

	s.Add(ctx, "a", models.Record{Carbs: 10})
	if err := s.CanAnalyze(); err != nil {
		t.Errorf("expected analyzable, got %v", err)
	}
}

func completeAttributes() models.UserAttributes {
	return models.UserAttributes{
		Gender:     models.Ptr(models.GenderMale),
		Age:        models.Ptr(30),
		Height:     models.Ptr(175.0),
		Weight:     models.Ptr(70.0),
		Activity:   models.Ptr(models.ActivityModerate),
		Diet:       models.Ptr(models.DietBalanced),
		Preference: models.Ptr(models.PreferenceOmnivore),
	}
}
