package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store"
	"github.com/verte-zerg/tally/internal/testutil"
)

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func newTestStore(t *testing.T) (*Store, *store.Adapter) {
	t.Helper()
	adapter := store.NewAdapter(store.NewMemory(), testutil.NopLogger())
	return New(context.Background(), adapter, testutil.NopLogger()), adapter
}

func TestGetDefaultsOnFirstAccess(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Get() != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s.Get())
	}
}

func TestUpdateMergesOnlySetFields(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	got, err := s.Update(ctx, Patch{ScoreIncrement: intPtr(5), Theme: &ThemePatch{Danger: strPtr("#ABC")}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := model.DefaultSettings()
	want.ScoreIncrement = 5
	want.Theme.Danger = "#aabbcc"
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got, err = s.Update(ctx, Patch{TeamMode: boolPtr(true), AllowNegativeScores: boolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ScoreIncrement != 5 || !got.TeamMode || !got.AllowNegativeScores {
		t.Fatalf("unexpected settings %+v", got)
	}

	var stored model.Settings
	if !adapter.Load(ctx, store.KeySettings, &stored) || stored != got {
		t.Fatalf("settings not persisted: %+v", stored)
	}
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, p := range []Patch{
		{ScoreIncrement: intPtr(3)},
		{ScoreIncrement: intPtr(0)},
		{Theme: &ThemePatch{Primary: strPtr("green")}},
	} {
		if _, err := s.Update(ctx, p); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", p, err)
		}
	}
	if s.Get() != model.DefaultSettings() {
		t.Fatalf("rejected updates must not change settings: %+v", s.Get())
	}
}

func TestUpdateJSONRejectsUnknownFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.UpdateJSON(ctx, []byte(`{"scoreIncrement":2,"volume":11}`)); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.UpdateJSON(ctx, []byte(`{"theme":{"accent":"#000"}}`)); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error for nested unknown field, got %v", err)
	}
	got, err := s.UpdateJSON(ctx, []byte(`{"scoreIncrement":10,"theme":{"primary":"#000000"}}`))
	if err != nil {
		t.Fatalf("update json: %v", err)
	}
	if got.ScoreIncrement != 10 || got.Theme.Primary != "#000000" {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestResetToDefaults(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Update(ctx, Patch{TeamMode: boolPtr(true)})
	s.ResetToDefaults(ctx)
	if s.Get() != model.DefaultSettings() {
		t.Fatalf("expected defaults")
	}
	fresh := New(ctx, adapter, testutil.NopLogger())
	if fresh.Get() != model.DefaultSettings() {
		t.Fatalf("reset not persisted: %+v", fresh.Get())
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	backend := store.NewMemory()
	ctx := context.Background()
	_ = backend.Set(ctx, store.KeySettings, []byte(`{"teamMode":true}`))
	s := New(ctx, store.NewAdapter(backend, testutil.NopLogger()), testutil.NopLogger())
	got := s.Get()
	if !got.TeamMode || got.ScoreIncrement != 1 || got.Theme != model.DefaultSettings().Theme {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestLoadInvalidFallsBackToDefaults(t *testing.T) {
	backend := store.NewMemory()
	ctx := context.Background()
	_ = backend.Set(ctx, store.KeySettings, []byte(`{"scoreIncrement":7,"teamMode":true}`))
	s := New(ctx, store.NewAdapter(backend, testutil.NopLogger()), testutil.NopLogger())
	if s.Get() != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s.Get())
	}
}
