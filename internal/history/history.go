// Package history keeps the append-only log of settled sessions.
package history

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store"
)

// Store holds settled sessions in chronological order.
type Store struct {
	adapter *store.Adapter
	logger  *slog.Logger
	limit   int
	entries []model.HistoryEntry
}

// New loads the stored log. A positive limit keeps only the newest entries.
func New(ctx context.Context, adapter *store.Adapter, logger *slog.Logger, limit int) *Store {
	s := &Store{adapter: adapter, logger: logger, limit: limit}
	var entries []model.HistoryEntry
	if adapter.Load(ctx, store.KeyHistory, &entries) {
		s.entries = entries
		s.trim()
	}
	return s
}

// Append adds an entry and persists the full log.
func (s *Store) Append(ctx context.Context, entry model.HistoryEntry) {
	s.push(entry)
	if err := s.adapter.Save(ctx, store.KeyHistory, s.forSave()); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist history", slog.String("error", err.Error()))
	}
}

// Record adds an entry and stages the full log into a settlement batch.
func (s *Store) Record(batch *store.Batch, entry model.HistoryEntry) {
	s.push(entry)
	batch.Put(store.KeyHistory, s.forSave())
}

// Recent returns up to n entries, most recent first. n <= 0 means the default of 5.
func (s *Store) Recent(n int) []model.HistoryEntry {
	if n <= 0 {
		n = model.DefaultRecent
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]model.HistoryEntry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// All returns every entry in chronological order.
func (s *Store) All() []model.HistoryEntry {
	return append([]model.HistoryEntry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Reset drops every entry from memory; the caller clears storage.
func (s *Store) Reset() {
	s.entries = nil
}

func (s *Store) push(entry model.HistoryEntry) {
	entry.Entrants = append([]model.Entrant(nil), entry.Entrants...)
	s.entries = append(s.entries, entry)
	s.trim()
}

func (s *Store) trim() {
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = append([]model.HistoryEntry(nil), s.entries[len(s.entries)-s.limit:]...)
	}
}

func (s *Store) forSave() []model.HistoryEntry {
	if s.entries == nil {
		return []model.HistoryEntry{}
	}
	return s.entries
}
