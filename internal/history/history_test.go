package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store"
	"github.com/verte-zerg/tally/internal/testutil"
)

func entry(i int) model.HistoryEntry {
	id := model.ID(fmt.Sprintf("p%d", i))
	return model.HistoryEntry{
		SessionID:       model.ID(fmt.Sprintf("s%d", i)),
		Entrants:        []model.Entrant{{ID: id, Kind: model.KindPlayer, Name: "P", Color: "#000000", Score: i}},
		WinnerEntrantID: id,
		Timestamp:       time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
	}
}

func newTestStore(t *testing.T, limit int) (*Store, *store.Adapter) {
	t.Helper()
	adapter := store.NewAdapter(store.NewMemory(), testutil.NopLogger())
	return New(context.Background(), adapter, testutil.NopLogger(), limit), adapter
}

func TestRecentOrderAndBounds(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()
	if got := s.Recent(5); len(got) != 0 {
		t.Fatalf("expected empty recent list, got %d", len(got))
	}
	for i := 1; i <= 7; i++ {
		s.Append(ctx, entry(i))
	}
	recent := s.Recent(5)
	if len(recent) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(recent))
	}
	for i, want := range []model.ID{"s7", "s6", "s5", "s4", "s3"} {
		if recent[i].SessionID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, recent[i].SessionID)
		}
	}
	if got := s.Recent(100); len(got) != 7 {
		t.Fatalf("expected all 7 entries, got %d", len(got))
	}
	if got := s.Recent(0); len(got) != model.DefaultRecent {
		t.Fatalf("expected default count, got %d", len(got))
	}
}

func TestLimitDropsOldest(t *testing.T) {
	s, adapter := newTestStore(t, 3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		s.Append(ctx, entry(i))
	}
	all := s.All()
	if len(all) != 3 || all[0].SessionID != "s3" || all[2].SessionID != "s5" {
		t.Fatalf("unexpected log %+v", all)
	}
	var stored []model.HistoryEntry
	if !adapter.Load(ctx, store.KeyHistory, &stored) || len(stored) != 3 {
		t.Fatalf("trimmed log not persisted: %d", len(stored))
	}
}

func TestRecordStagesIntoBatch(t *testing.T) {
	s, adapter := newTestStore(t, 0)
	ctx := context.Background()
	batch := adapter.Batch()
	s.Record(batch, entry(1))
	var stored []model.HistoryEntry
	if adapter.Load(ctx, store.KeyHistory, &stored) {
		t.Fatalf("nothing should be written before commit")
	}
	if err := batch.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	fresh := New(ctx, adapter, testutil.NopLogger(), 0)
	if fresh.Len() != 1 || fresh.All()[0].WinnerEntrantID != "p1" {
		t.Fatalf("unexpected reloaded log %+v", fresh.All())
	}
}

func TestAppendCopiesEntrants(t *testing.T) {
	s, _ := newTestStore(t, 0)
	e := entry(1)
	s.Append(context.Background(), e)
	e.Entrants[0].Name = "mutated"
	if s.All()[0].Entrants[0].Name != "P" {
		t.Fatalf("history entry aliased caller slice")
	}
}

func TestLoadsLegacyGames(t *testing.T) {
	backend := store.NewMemory()
	ctx := context.Background()
	_ = backend.Set(ctx, store.KeyHistory, []byte(`[{"id":1,"players":[{"id":7,"name":"Ann","color":"#ff0000","wins":0,"losses":0,"score":2}],"timestamp":"2024-05-01T12:00:00.000Z","winnerId":7}]`))
	s := New(ctx, store.NewAdapter(backend, testutil.NopLogger()), testutil.NopLogger(), 0)
	recent := s.Recent(5)
	if len(recent) != 1 {
		t.Fatalf("expected one legacy entry, got %d", len(recent))
	}
	winner, ok := recent[0].Winner()
	if !ok || winner.Name != "Ann" || winner.Score != 2 {
		t.Fatalf("unexpected winner %+v", winner)
	}
}
