package session

import (
	"context"
	"testing"

	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/storage"
)

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	s.Add(ctx, "50g carbs", models.Record{Carbs: 50})
	s.Add(ctx, "banana", models.Record{FoodName: "Banana", Carbs: 27, Protein: 1.3, Fat: 0.4})
	p, _ := s.SaveProfile(ctx, "Bob", completeAttributes())

	reloaded, err := Load(ctx, kv, AutoConfirm)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if reloaded.Totals() != s.Totals() {
		t.Errorf("totals = %+v, want %+v", reloaded.Totals(), s.Totals())
	}
	if len(reloaded.History()) != 2 {
		t.Fatalf("history length = %d, want 2", len(reloaded.History()))
	}
	if reloaded.History()[1].Input != "banana" {
		t.Errorf("history order not preserved: %+v", reloaded.History())
	}
	if reloaded.ActiveProfileID() != p.ID {
		t.Error("active profile pointer not persisted")
	}

	// Undo still works across a reload.
	if _, err := reloaded.UndoLast(ctx); err != nil {
		t.Fatalf("undo after reload: %v", err)
	}
	if got := reloaded.Totals().Carbs; got != 50 {
		t.Errorf("carbs after reload+undo = %v, want 50", got)
	}
}

func TestLoadPrefersActiveProfileOverLooseRecord(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	s.SaveProfile(ctx, "Bob", models.UserAttributes{Age: models.Ptr(30)})
	s.SetAttributes(ctx, models.UserAttributes{Age: models.Ptr(99)})

	reloaded, err := Load(ctx, kv, AutoConfirm)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.UserInfo()
	if got.Age == nil || *got.Age != 30 {
		t.Errorf("age = %v, want profile data to win on load", got.Age)
	}
}

func TestLoadFallsBackToLooseAttributes(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	p, _ := s.SaveProfile(ctx, "Bob", models.UserAttributes{Age: models.Ptr(30)})
	s.SetAttributes(ctx, models.UserAttributes{Age: models.Ptr(99)})
	s.DeleteProfile(ctx, p.ID)

	reloaded, err := Load(ctx, kv, AutoConfirm)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ActiveProfileID() != "" {
		t.Error("dangling active pointer must stay cleared")
	}
	got := reloaded.Attributes()
	if got.Age == nil || *got.Age != 99 {
		t.Errorf("age = %v, want loose fallback 99", got.Age)
	}
}

func TestLoadClearsDanglingActivePointer(t *testing.T) {
	ctx := context.Background()
	_, kv := newTestSession(t)

	// Simulate a pointer to a profile that no longer exists.
	kv.Set(ctx, keyActiveID, []byte("01ARZ3NDEKTSV4RRFFQ69G5FAV"))

	reloaded, err := Load(ctx, kv, AutoConfirm)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ActiveProfileID() != "" {
		t.Error("unresolvable active pointer must be cleared on load")
	}
}

func TestLoadDiscardsCorruptRecordsIndependently(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	s.Add(ctx, "50g carbs", models.Record{Carbs: 50})
	s.SaveProfile(ctx, "Bob", completeAttributes())

	// Corrupt only the totals record; everything else must survive.
	kv.Set(ctx, keyTotals, []byte("{not json"))

	reloaded, err := Load(ctx, kv, AutoConfirm)
	if err != nil {
		t.Fatalf("reload must recover, got %v", err)
	}
	if !reloaded.Totals().IsZero() {
		t.Errorf("corrupt totals must default to zero, got %+v", reloaded.Totals())
	}
	if len(reloaded.Profiles()) != 1 {
		t.Error("profile record must load independently of corrupt totals")
	}
	if len(reloaded.History()) != 1 {
		t.Error("history record must load independently of corrupt totals")
	}
}

func TestLoadDefaultsFromEmptyStore(t *testing.T) {
	ctx := context.Background()
	s, err := Load(ctx, storage.NewMemoryKV(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Totals().IsZero() || len(s.History()) != 0 || len(s.Profiles()) != 0 {
		t.Error("empty store must yield a default session")
	}
	if s.ActiveProfileID() != "" {
		t.Error("no active profile expected")
	}
	if got := s.Attributes(); len(got.Missing()) != 7 {
		t.Error("attributes must start unset")
	}
}

func TestEveryMutationPersistsSynchronously(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	s.Add(ctx, "a", models.Record{Carbs: 5})

	// A fresh load between each mutation sees the completed state.
	check := func(wantCarbs float64, wantHistory int) {
		t.Helper()
		r, err := Load(ctx, kv, AutoConfirm)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if r.Totals().Carbs != wantCarbs || len(r.History()) != wantHistory {
			t.Errorf("persisted state = {%v, %d}, want {%v, %d}",
				r.Totals().Carbs, len(r.History()), wantCarbs, wantHistory)
		}
	}

	check(5, 1)
	s.Add(ctx, "b", models.Record{Carbs: 2})
	check(7, 2)
	s.UndoLast(ctx)
	check(5, 1)
	s.Reset(ctx)
	check(0, 0)
}
