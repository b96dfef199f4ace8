package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Keys of the four persisted collections. The names match data written by
// earlier versions and must not change.
const (
	KeyPlayers  = "scoreTrackerPlayers"
	KeyTeams    = "scoreTrackerTeams"
	KeySettings = "scoreTrackerSettings"
	KeyHistory  = "scoreTrackerGames"
)

// AllKeys lists every persisted key, in the order a full reset clears them.
var AllKeys = []string{KeyPlayers, KeyTeams, KeySettings, KeyHistory}

// Adapter stores JSON documents in a Backend.
type Adapter struct {
	backend Backend
	logger  *slog.Logger
}

// NewAdapter wraps a backend.
func NewAdapter(backend Backend, logger *slog.Logger) *Adapter {
	return &Adapter{backend: backend, logger: logger}
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Load decodes the value under key into dst. It returns false when the key is
// missing, the backend fails, or the stored content is malformed; dst is left
// untouched in that case and the caller falls back to its default.
func (a *Adapter) Load(ctx context.Context, key string, dst any) bool {
	data, ok, err := a.backend.Get(ctx, key)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to read stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !ok {
		return false
	}
	if err := decodeInto(data, dst); err != nil {
		a.logger.WarnContext(ctx, "discarding malformed stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// decodeInto rejects invalid and null documents before touching dst.
func decodeInto(data []byte, dst any) error {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe == nil {
		return fmt.Errorf("stored value is null")
	}
	return json.Unmarshal(data, dst)
}

// Save encodes value and writes it under key.
func (a *Adapter) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := a.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Clear removes all listed keys.
func (a *Adapter) Clear(ctx context.Context, keys ...string) error {
	if err := a.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("clearing keys: %w", err)
	}
	return nil
}

// Batch starts an all-or-nothing multi-key write.
func (a *Adapter) Batch() *Batch {
	return &Batch{adapter: a, entries: map[string][]byte{}}
}

// Batch collects encoded values until Commit.
type Batch struct {
	adapter *Adapter
	entries map[string][]byte
	err     error
}

// Put stages value under key. A later Put for the same key wins.
func (b *Batch) Put(key string, value any) {
	if b.err != nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		b.err = fmt.Errorf("encoding %s: %w", key, err)
		return
	}
	b.entries[key] = data
}

// Keys returns the number of staged keys.
func (b *Batch) Keys() int {
	return len(b.entries)
}

// Commit writes every staged value at once.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if err := b.adapter.backend.SetMany(ctx, b.entries); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}
