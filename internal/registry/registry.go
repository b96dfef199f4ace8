// Package registry owns the player and team collections.
package registry

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store"
)

// Registry keeps players and teams in insertion order and writes every change
// through to the adapter.
type Registry struct {
	adapter *store.Adapter
	logger  *slog.Logger
	newID   func() model.ID

	players []model.Player
	teams   []model.Team
}

// New loads both collections. Missing or malformed data yields empty collections.
func New(ctx context.Context, adapter *store.Adapter, logger *slog.Logger) *Registry {
	r := &Registry{
		adapter: adapter,
		logger:  logger,
		newID:   func() model.ID { return model.ID(uuid.NewString()) },
	}
	var players []model.Player
	if adapter.Load(ctx, store.KeyPlayers, &players) {
		r.players = players
	}
	var teams []model.Team
	if adapter.Load(ctx, store.KeyTeams, &teams) {
		r.teams = teams
	}
	r.dropDanglingMembers()
	return r
}

// dropDanglingMembers removes member ids that no longer name a player and
// enforces single-team membership on data written by older versions.
func (r *Registry) dropDanglingMembers() {
	seen := map[model.ID]bool{}
	for i := range r.teams {
		kept := r.teams[i].MemberPlayerIDs[:0]
		for _, id := range r.teams[i].MemberPlayerIDs {
			if seen[id] || r.playerIndex(id) < 0 {
				continue
			}
			seen[id] = true
			kept = append(kept, id)
		}
		r.teams[i].MemberPlayerIDs = kept
	}
}

// Players returns a copy of all players.
func (r *Registry) Players() []model.Player {
	return append([]model.Player(nil), r.players...)
}

// Teams returns a copy of all teams.
func (r *Registry) Teams() []model.Team {
	out := make([]model.Team, len(r.teams))
	for i, t := range r.teams {
		out[i] = copyTeam(t)
	}
	return out
}

// Player returns the player with the given id.
func (r *Registry) Player(id model.ID) (model.Player, bool) {
	idx := r.playerIndex(id)
	if idx < 0 {
		return model.Player{}, false
	}
	return r.players[idx], true
}

// Team returns the team with the given id.
func (r *Registry) Team(id model.ID) (model.Team, bool) {
	idx := r.teamIndex(id)
	if idx < 0 {
		return model.Team{}, false
	}
	return copyTeam(r.teams[idx]), true
}

// TeamOf returns the team the player belongs to, if any.
func (r *Registry) TeamOf(playerID model.ID) (model.Team, bool) {
	for _, t := range r.teams {
		if t.HasMember(playerID) {
			return copyTeam(t), true
		}
	}
	return model.Team{}, false
}

// AddPlayer registers a new player with zero wins and losses.
func (r *Registry) AddPlayer(ctx context.Context, name, color string) (model.Player, error) {
	name, err := model.NormalizeName("name", name)
	if err != nil {
		return model.Player{}, err
	}
	color, err = model.NormalizeColor(color)
	if err != nil {
		return model.Player{}, err
	}
	p := model.Player{ID: r.newID(), Name: name, Color: color}
	r.players = append(r.players, p)
	r.savePlayers(ctx)
	r.logger.InfoContext(ctx, "player added", slog.String("player_id", p.ID.String()), slog.String("name", p.Name))
	return p, nil
}

// RemovePlayer deletes the player and detaches it from every team. Unknown
// ids are a no-op.
func (r *Registry) RemovePlayer(ctx context.Context, id model.ID) {
	idx := r.playerIndex(id)
	if idx < 0 {
		return
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	for i := range r.teams {
		r.teams[i].MemberPlayerIDs = without(r.teams[i].MemberPlayerIDs, id)
	}
	r.savePlayers(ctx)
	r.saveTeams(ctx)
	r.logger.InfoContext(ctx, "player removed", slog.String("player_id", id.String()))
}

// RenamePlayer changes a player's display name.
func (r *Registry) RenamePlayer(ctx context.Context, id model.ID, name string) error {
	idx := r.playerIndex(id)
	if idx < 0 {
		return &model.NotFoundError{Kind: "player", ID: id}
	}
	name, err := model.NormalizeName("name", name)
	if err != nil {
		return err
	}
	r.players[idx].Name = name
	r.savePlayers(ctx)
	return nil
}

// RecolorPlayer changes a player's colour.
func (r *Registry) RecolorPlayer(ctx context.Context, id model.ID, color string) error {
	idx := r.playerIndex(id)
	if idx < 0 {
		return &model.NotFoundError{Kind: "player", ID: id}
	}
	color, err := model.NormalizeColor(color)
	if err != nil {
		return err
	}
	r.players[idx].Color = color
	r.savePlayers(ctx)
	return nil
}

// AddTeam registers a new, empty team.
func (r *Registry) AddTeam(ctx context.Context, name, color string) (model.Team, error) {
	name, err := model.NormalizeName("name", name)
	if err != nil {
		return model.Team{}, err
	}
	color, err = model.NormalizeColor(color)
	if err != nil {
		return model.Team{}, err
	}
	t := model.Team{ID: r.newID(), Name: name, Color: color, MemberPlayerIDs: []model.ID{}}
	r.teams = append(r.teams, t)
	r.saveTeams(ctx)
	r.logger.InfoContext(ctx, "team added", slog.String("team_id", t.ID.String()), slog.String("name", t.Name))
	return copyTeam(t), nil
}

// RemoveTeam deletes a team. Its members become team-less. Unknown ids are a no-op.
func (r *Registry) RemoveTeam(ctx context.Context, id model.ID) {
	idx := r.teamIndex(id)
	if idx < 0 {
		return
	}
	r.teams = append(r.teams[:idx], r.teams[idx+1:]...)
	r.saveTeams(ctx)
	r.logger.InfoContext(ctx, "team removed", slog.String("team_id", id.String()))
}

// RenameTeam changes a team's display name.
func (r *Registry) RenameTeam(ctx context.Context, id model.ID, name string) error {
	idx := r.teamIndex(id)
	if idx < 0 {
		return &model.NotFoundError{Kind: "team", ID: id}
	}
	name, err := model.NormalizeName("name", name)
	if err != nil {
		return err
	}
	r.teams[idx].Name = name
	r.saveTeams(ctx)
	return nil
}

// RecolorTeam changes a team's colour.
func (r *Registry) RecolorTeam(ctx context.Context, id model.ID, color string) error {
	idx := r.teamIndex(id)
	if idx < 0 {
		return &model.NotFoundError{Kind: "team", ID: id}
	}
	color, err := model.NormalizeColor(color)
	if err != nil {
		return err
	}
	r.teams[idx].Color = color
	r.saveTeams(ctx)
	return nil
}

// AddPlayerToTeam makes the player a member of the team. Membership is
// exclusive: the player leaves any other team first.
func (r *Registry) AddPlayerToTeam(ctx context.Context, playerID, teamID model.ID) error {
	if r.playerIndex(playerID) < 0 {
		return &model.NotFoundError{Kind: "player", ID: playerID}
	}
	idx := r.teamIndex(teamID)
	if idx < 0 {
		return &model.NotFoundError{Kind: "team", ID: teamID}
	}
	if r.teams[idx].HasMember(playerID) {
		return nil
	}
	for i := range r.teams {
		r.teams[i].MemberPlayerIDs = without(r.teams[i].MemberPlayerIDs, playerID)
	}
	r.teams[idx].MemberPlayerIDs = append(r.teams[idx].MemberPlayerIDs, playerID)
	r.saveTeams(ctx)
	return nil
}

// RemovePlayerFromTeam drops the player from the team's members. A player
// that is not a member is a no-op.
func (r *Registry) RemovePlayerFromTeam(ctx context.Context, playerID, teamID model.ID) error {
	idx := r.teamIndex(teamID)
	if idx < 0 {
		return &model.NotFoundError{Kind: "team", ID: teamID}
	}
	if !r.teams[idx].HasMember(playerID) {
		return nil
	}
	r.teams[idx].MemberPlayerIDs = without(r.teams[idx].MemberPlayerIDs, playerID)
	r.saveTeams(ctx)
	return nil
}

// Snapshot copies the referenced record into a fresh entrant with score 0.
func (r *Registry) Snapshot(ref model.EntrantRef) (model.Entrant, error) {
	switch ref.Kind {
	case model.KindPlayer:
		p, ok := r.Player(ref.ID)
		if !ok {
			return model.Entrant{}, &model.NotFoundError{Kind: "player", ID: ref.ID}
		}
		return model.Entrant{ID: p.ID, Kind: model.KindPlayer, Name: p.Name, Color: p.Color}, nil
	case model.KindTeam:
		t, ok := r.Team(ref.ID)
		if !ok {
			return model.Entrant{}, &model.NotFoundError{Kind: "team", ID: ref.ID}
		}
		return model.Entrant{ID: t.ID, Kind: model.KindTeam, Name: t.Name, Color: t.Color}, nil
	default:
		return model.Entrant{}, &model.ValidationError{Field: "entrant kind", Reason: string(ref.Kind) + " is not player or team"}
	}
}

// RecordResults applies win/loss increments and stages both collections into
// the batch. Results whose source record was removed are skipped.
func (r *Registry) RecordResults(batch *store.Batch, results []model.Result) {
	for _, res := range results {
		switch res.Ref.Kind {
		case model.KindPlayer:
			if idx := r.playerIndex(res.Ref.ID); idx >= 0 {
				if res.Won {
					r.players[idx].Wins++
				} else {
					r.players[idx].Losses++
				}
			}
		case model.KindTeam:
			if idx := r.teamIndex(res.Ref.ID); idx >= 0 {
				if res.Won {
					r.teams[idx].Wins++
				} else {
					r.teams[idx].Losses++
				}
			}
		}
	}
	batch.Put(store.KeyPlayers, r.playersForSave())
	batch.Put(store.KeyTeams, r.teamsForSave())
}

// Reset drops every player and team from memory.
func (r *Registry) Reset() {
	r.players = nil
	r.teams = nil
}

func (r *Registry) playerIndex(id model.ID) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) teamIndex(id model.ID) int {
	for i, t := range r.teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// playersForSave never returns nil so an empty registry persists as [].
func (r *Registry) playersForSave() []model.Player {
	if r.players == nil {
		return []model.Player{}
	}
	return r.players
}

func (r *Registry) teamsForSave() []model.Team {
	if r.teams == nil {
		return []model.Team{}
	}
	return r.teams
}

func (r *Registry) savePlayers(ctx context.Context) {
	if err := r.adapter.Save(ctx, store.KeyPlayers, r.playersForSave()); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist players", slog.String("error", err.Error()))
	}
}

func (r *Registry) saveTeams(ctx context.Context) {
	if err := r.adapter.Save(ctx, store.KeyTeams, r.teamsForSave()); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist teams", slog.String("error", err.Error()))
	}
}

func copyTeam(t model.Team) model.Team {
	t.MemberPlayerIDs = append([]model.ID{}, t.MemberPlayerIDs...)
	return t
}

func without(ids []model.ID, id model.ID) []model.ID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
