// Package session runs the selection and scoring state machine.
package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verte-zerg/tally/internal/clock"
	"github.com/verte-zerg/tally/internal/history"
	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/registry"
	"github.com/verte-zerg/tally/internal/settings"
	"github.com/verte-zerg/tally/internal/store"
)

// State is the engine phase.
type State int

const (
	Idle State = iota
	Selecting
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Minimum entrant counts per mode.
const (
	minPlayers = 1
	minTeams   = 2
)

// Engine moves between Idle, Selecting and Active. Entrants are value
// snapshots; registry edits made while a session runs do not reach it.
type Engine struct {
	adapter  *store.Adapter
	registry *registry.Registry
	settings *settings.Store
	history  *history.Store
	clock    clock.Clock
	logger   *slog.Logger
	newID    func() model.ID

	state      State
	candidates []model.Entrant
	session    model.Session
}

// New returns an idle engine.
func New(adapter *store.Adapter, reg *registry.Registry, set *settings.Store, hist *history.Store, clk clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		adapter:  adapter,
		registry: reg,
		settings: set,
		history:  hist,
		clock:    clk,
		logger:   logger,
		newID:    func() model.ID { return model.ID(uuid.NewString()) },
	}
}

// State returns the current phase.
func (e *Engine) State() State {
	return e.state
}

// Candidates returns the entrants chosen so far, in toggle-in order.
func (e *Engine) Candidates() []model.Entrant {
	return append([]model.Entrant(nil), e.candidates...)
}

// Selected reports whether ref is currently a candidate.
func (e *Engine) Selected(ref model.EntrantRef) bool {
	return e.candidateIndex(ref) >= 0
}

// Active returns a copy of the running session.
func (e *Engine) Active() (model.Session, bool) {
	if e.state != Active {
		return model.Session{}, false
	}
	s := e.session
	s.Entrants = append([]model.Entrant(nil), s.Entrants...)
	return s, true
}

// BeginSelection starts choosing entrants.
func (e *Engine) BeginSelection() error {
	if e.state != Idle {
		return e.invalid("begin selection")
	}
	e.state = Selecting
	e.candidates = nil
	return nil
}

// ToggleEntrant adds a snapshot of ref to the candidates, or removes it if
// already chosen.
func (e *Engine) ToggleEntrant(ref model.EntrantRef) error {
	if e.state != Selecting {
		return e.invalid("toggle entrant")
	}
	if want := e.mode(); ref.Kind != want {
		return &model.ValidationError{
			Field:  "entrant",
			Reason: "must be a " + string(want) + " in the current mode",
		}
	}
	if idx := e.candidateIndex(ref); idx >= 0 {
		e.candidates = append(e.candidates[:idx], e.candidates[idx+1:]...)
		return nil
	}
	entrant, err := e.registry.Snapshot(ref)
	if err != nil {
		return err
	}
	e.candidates = append(e.candidates, entrant)
	return nil
}

// Start turns the candidates into a running session.
func (e *Engine) Start(ctx context.Context) (model.Session, error) {
	if e.state != Selecting {
		return model.Session{}, e.invalid("start")
	}
	e.candidates = e.eligible()
	minimum, noun := minPlayers, "player"
	if e.mode() == model.KindTeam {
		minimum, noun = minTeams, "teams"
	}
	if len(e.candidates) < minimum {
		reason := "select at least one player"
		if minimum > 1 {
			reason = "select at least two " + noun
		}
		return model.Session{}, &model.ValidationError{Field: "entrants", Reason: reason}
	}
	entrants := make([]model.Entrant, len(e.candidates))
	for i, c := range e.candidates {
		c.Score = 0
		entrants[i] = c
	}
	e.session = model.Session{ID: e.newID(), Entrants: entrants, StartedAt: e.clock.Now()}
	e.candidates = nil
	e.state = Active
	e.logger.InfoContext(ctx, "session started",
		slog.String("session_id", e.session.ID.String()),
		slog.Int("entrants", len(entrants)),
	)
	s, _ := e.Active()
	return s, nil
}

// AdjustScore moves an entrant's score by one increment in the sign of
// direction. Unknown entrant ids are ignored.
func (e *Engine) AdjustScore(entrantID model.ID, direction int) error {
	if e.state != Active {
		return e.invalid("adjust score")
	}
	if direction == 0 {
		return nil
	}
	cfg := e.settings.Get()
	step := cfg.ScoreIncrement
	if direction < 0 {
		step = -step
	}
	for i := range e.session.Entrants {
		if e.session.Entrants[i].ID != entrantID {
			continue
		}
		next := e.session.Entrants[i].Score + step
		if next < 0 && !cfg.AllowNegativeScores {
			next = 0
		}
		e.session.Entrants[i].Score = next
		return nil
	}
	return nil
}

// End settles the running session: the first entrant holding the top score
// wins, every other entrant loses. Registry totals and the history entry are
// written in a single batch.
func (e *Engine) End(ctx context.Context) (model.HistoryEntry, error) {
	if e.state != Active {
		return model.HistoryEntry{}, e.invalid("end")
	}
	if len(e.session.Entrants) == 0 {
		return model.HistoryEntry{}, e.invalid("end without entrants")
	}
	winner := Winner(e.session.Entrants)
	results := make([]model.Result, len(e.session.Entrants))
	for i, en := range e.session.Entrants {
		results[i] = model.Result{Ref: en.Ref(), Won: i == winner}
	}
	entry := model.HistoryEntry{
		SessionID:       e.session.ID,
		Entrants:        append([]model.Entrant(nil), e.session.Entrants...),
		WinnerEntrantID: e.session.Entrants[winner].ID,
		Timestamp:       e.clock.Now(),
	}

	batch := e.adapter.Batch()
	e.registry.RecordResults(batch, results)
	e.history.Record(batch, entry)
	if err := batch.Commit(ctx); err != nil {
		e.logger.ErrorContext(ctx, "failed to persist settlement",
			slog.String("session_id", entry.SessionID.String()),
			slog.String("error", err.Error()),
		)
	}

	e.logger.InfoContext(ctx, "session ended",
		slog.String("session_id", entry.SessionID.String()),
		slog.String("winner", e.session.Entrants[winner].Name),
	)
	e.session = model.Session{}
	e.state = Idle
	return entry, nil
}

// Cancel abandons selection. It is a no-op when idle.
func (e *Engine) Cancel() error {
	switch e.state {
	case Idle:
		return nil
	case Selecting:
		e.candidates = nil
		e.state = Idle
		return nil
	default:
		return e.invalid("cancel")
	}
}

// Reset returns the engine to Idle, dropping any selection or session.
func (e *Engine) Reset() {
	e.state = Idle
	e.candidates = nil
	e.session = model.Session{}
}

// Winner returns the index of the first entrant holding the highest score.
// It returns -1 for an empty slice.
func Winner(entrants []model.Entrant) int {
	best := -1
	for i, en := range entrants {
		if best < 0 || en.Score > entrants[best].Score {
			best = i
		}
	}
	return best
}

func (e *Engine) mode() model.EntrantKind {
	if e.settings.Get().TeamMode {
		return model.KindTeam
	}
	return model.KindPlayer
}

// eligible re-snapshots the candidates, dropping those that no longer match
// the current mode or whose source record was removed.
func (e *Engine) eligible() []model.Entrant {
	want := e.mode()
	var kept []model.Entrant
	for _, c := range e.candidates {
		if c.Kind != want {
			continue
		}
		fresh, err := e.registry.Snapshot(c.Ref())
		if err != nil {
			continue
		}
		kept = append(kept, fresh)
	}
	return kept
}

func (e *Engine) candidateIndex(ref model.EntrantRef) int {
	for i, c := range e.candidates {
		if c.Ref() == ref {
			return i
		}
	}
	return -1
}

func (e *Engine) invalid(op string) error {
	return &model.InvalidStateError{Op: op, State: e.state.String()}
}
