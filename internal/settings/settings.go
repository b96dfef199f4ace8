// Package settings owns the singleton settings record.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store"
)

// ThemePatch carries optional theme colour changes.
type ThemePatch struct {
	Primary   *string `json:"primary,omitempty"`
	Secondary *string `json:"secondary,omitempty"`
	Danger    *string `json:"danger,omitempty"`
}

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	ScoreIncrement      *int        `json:"scoreIncrement,omitempty"`
	AllowNegativeScores *bool       `json:"allowNegativeScores,omitempty"`
	TeamMode            *bool       `json:"teamMode,omitempty"`
	Theme               *ThemePatch `json:"theme,omitempty"`
}

// Store holds the current settings and persists every change.
type Store struct {
	adapter *store.Adapter
	logger  *slog.Logger
	current model.Settings
}

// New loads stored settings. Missing fields take their defaults; a stored
// record that fails validation is replaced by the defaults as a whole.
func New(ctx context.Context, adapter *store.Adapter, logger *slog.Logger) *Store {
	s := &Store{adapter: adapter, logger: logger, current: model.DefaultSettings()}
	var stored Patch
	if adapter.Load(ctx, store.KeySettings, &stored) {
		merged, err := apply(model.DefaultSettings(), stored)
		if err != nil {
			logger.WarnContext(ctx, "ignoring invalid stored settings", slog.String("error", err.Error()))
		} else {
			s.current = merged
		}
	}
	return s
}

// Get returns the current settings.
func (s *Store) Get() model.Settings {
	return s.current
}

// Update merges the set fields of p into the current settings.
func (s *Store) Update(ctx context.Context, p Patch) (model.Settings, error) {
	next, err := apply(s.current, p)
	if err != nil {
		return s.current, err
	}
	s.current = next
	s.save(ctx)
	return s.current, nil
}

// UpdateJSON applies a JSON-encoded patch. Unrecognized fields are rejected.
func (s *Store) UpdateJSON(ctx context.Context, raw []byte) (model.Settings, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var p Patch
	if err := dec.Decode(&p); err != nil {
		return s.current, &model.ValidationError{Field: "settings", Reason: err.Error()}
	}
	return s.Update(ctx, p)
}

// ResetToDefaults restores and persists the default settings.
func (s *Store) ResetToDefaults(ctx context.Context) model.Settings {
	s.current = model.DefaultSettings()
	s.save(ctx)
	return s.current
}

// Reset restores defaults in memory only; the caller clears storage.
func (s *Store) Reset() {
	s.current = model.DefaultSettings()
}

func (s *Store) save(ctx context.Context) {
	if err := s.adapter.Save(ctx, store.KeySettings, s.current); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist settings", slog.String("error", err.Error()))
	}
}

func apply(cur model.Settings, p Patch) (model.Settings, error) {
	if p.ScoreIncrement != nil {
		if !model.ValidIncrement(*p.ScoreIncrement) {
			return cur, &model.ValidationError{
				Field:  "scoreIncrement",
				Reason: fmt.Sprintf("must be one of %v, got %d", model.ScoreIncrements, *p.ScoreIncrement),
			}
		}
		cur.ScoreIncrement = *p.ScoreIncrement
	}
	if p.AllowNegativeScores != nil {
		cur.AllowNegativeScores = *p.AllowNegativeScores
	}
	if p.TeamMode != nil {
		cur.TeamMode = *p.TeamMode
	}
	if p.Theme != nil {
		fields := []struct {
			name  string
			value *string
			dst   *string
		}{
			{"theme.primary", p.Theme.Primary, &cur.Theme.Primary},
			{"theme.secondary", p.Theme.Secondary, &cur.Theme.Secondary},
			{"theme.danger", p.Theme.Danger, &cur.Theme.Danger},
		}
		for _, f := range fields {
			if f.value == nil || strings.TrimSpace(*f.value) == "" {
				continue
			}
			color, err := model.NormalizeColor(*f.value)
			if err != nil {
				return cur, &model.ValidationError{Field: f.name, Reason: err.Error()}
			}
			*f.dst = color
		}
	}
	return cur, nil
}
