// Package tui provides the Bubble Tea scoreboard interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tally/internal/app"
	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/settings"
)

// Model implements the Bubble Tea scoreboard UI.
type Model struct {
	ctx    context.Context
	app    *app.App
	logger *slog.Logger
	recent int

	screen screen

	width  int
	height int

	status string
	errMsg string
}

// NewModel constructs the UI on the home screen.
func NewModel(ctx context.Context, a *app.App, logger *slog.Logger, recent int) *Model {
	if recent <= 0 {
		recent = model.DefaultRecent
	}
	return &Model{
		ctx:    ctx,
		app:    a,
		logger: logger,
		recent: recent,
		screen: &homeScreen{},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.errMsg = ""
		switch s := m.screen.(type) {
		case *homeScreen:
			return m.updateHome(s, msg)
		case *playersScreen:
			return m.updatePlayers(s, msg)
		case *teamsScreen:
			return m.updateTeams(s, msg)
		case *settingsScreen:
			return m.updateSettings(s, msg)
		case *selectScreen:
			return m.updateSelect(s, msg)
		case *gameScreen:
			return m.updateGame(s, msg)
		case *confirmResetScreen:
			return m.updateConfirmReset(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.render(m.screen)
}

// fail shows recoverable errors inline. State-machine violations are caller
// bugs and only go to the log.
func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, model.ErrInvalidState) {
		m.logger.ErrorContext(m.ctx, "rejected action", slog.String("error", err.Error()))
		return
	}
	m.errMsg = err.Error()
}

func (m *Model) goHome() {
	m.screen = &homeScreen{}
}

func (m *Model) updateHome(s *homeScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(homeItems))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(homeItems))
	case "n":
		m.beginSelection()
	case "p":
		m.screen = &playersScreen{}
	case "t":
		m.screen = &teamsScreen{}
	case "s":
		m.screen = &settingsScreen{}
	case "enter", " ":
		switch homeItem(s.cursor) {
		case homeNewGame:
			m.beginSelection()
		case homePlayers:
			m.screen = &playersScreen{}
		case homeTeams:
			m.screen = &teamsScreen{}
		case homeSettings:
			m.screen = &settingsScreen{}
		case homeReset:
			m.screen = &confirmResetScreen{}
		case homeQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) beginSelection() {
	m.status = ""
	if err := m.app.Engine.BeginSelection(); err != nil {
		m.fail(err)
		return
	}
	m.screen = &selectScreen{}
}

func (m *Model) updatePlayers(s *playersScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if s.prompt != nil {
		var cmd tea.Cmd
		s.prompt, cmd = m.updatePrompt(model.KindPlayer, s.prompt, msg)
		return m, cmd
	}
	players := m.app.Registry.Players()
	s.cursor = clampCursor(s.cursor, len(players))
	switch msg.String() {
	case "esc", "q":
		m.goHome()
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(players))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(players))
	case "a":
		s.prompt = newPrompt(actAddName, "", "")
	case "r", "enter":
		if len(players) > 0 {
			p := players[s.cursor]
			s.prompt = newPrompt(actRename, p.ID, p.Name)
		}
	case "c":
		if len(players) > 0 {
			p := players[s.cursor]
			s.prompt = newPrompt(actRecolor, p.ID, p.Color)
		}
	case "d", "x", "delete":
		if len(players) > 0 {
			m.app.Registry.RemovePlayer(m.ctx, players[s.cursor].ID)
			s.cursor = clampCursor(s.cursor, len(players)-1)
		}
	}
	return m, nil
}

func (m *Model) updateTeams(s *teamsScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if s.prompt != nil {
		var cmd tea.Cmd
		s.prompt, cmd = m.updatePrompt(model.KindTeam, s.prompt, msg)
		return m, cmd
	}
	if s.members != nil {
		return m.updateMembers(s, msg)
	}
	teams := m.app.Registry.Teams()
	s.cursor = clampCursor(s.cursor, len(teams))
	switch msg.String() {
	case "esc", "q":
		m.goHome()
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(teams))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(teams))
	case "a":
		s.prompt = newPrompt(actAddName, "", "")
	case "r":
		if len(teams) > 0 {
			t := teams[s.cursor]
			s.prompt = newPrompt(actRename, t.ID, t.Name)
		}
	case "c":
		if len(teams) > 0 {
			t := teams[s.cursor]
			s.prompt = newPrompt(actRecolor, t.ID, t.Color)
		}
	case "enter", "m":
		if len(teams) > 0 {
			s.members = &membersView{teamID: teams[s.cursor].ID}
		}
	case "d", "x", "delete":
		if len(teams) > 0 {
			m.app.Registry.RemoveTeam(m.ctx, teams[s.cursor].ID)
			s.cursor = clampCursor(s.cursor, len(teams)-1)
		}
	}
	return m, nil
}

func (m *Model) updateMembers(s *teamsScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := s.members
	team, ok := m.app.Registry.Team(v.teamID)
	if !ok {
		s.members = nil
		return m, nil
	}
	players := m.app.Registry.Players()
	v.cursor = clampCursor(v.cursor, len(players))
	switch msg.String() {
	case "esc", "q":
		s.members = nil
	case "up", "k":
		v.cursor = moveCursor(v.cursor, -1, len(players))
	case "down", "j":
		v.cursor = moveCursor(v.cursor, 1, len(players))
	case " ", "enter":
		if len(players) == 0 {
			return m, nil
		}
		p := players[v.cursor]
		if team.HasMember(p.ID) {
			m.fail(m.app.Registry.RemovePlayerFromTeam(m.ctx, p.ID, team.ID))
		} else {
			m.fail(m.app.Registry.AddPlayerToTeam(m.ctx, p.ID, team.ID))
		}
	}
	return m, nil
}

// updatePrompt feeds a key to an open prompt and returns the prompt to keep,
// or nil once it is closed.
func (m *Model) updatePrompt(kind model.EntrantKind, p *prompt, msg tea.KeyMsg) (*prompt, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return nil, nil
	case tea.KeyEnter:
		next, err := m.submitPrompt(kind, p)
		if err != nil {
			m.fail(err)
			return p, nil
		}
		return next, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (m *Model) submitPrompt(kind model.EntrantKind, p *prompt) (*prompt, error) {
	value := p.input.Value()
	reg := m.app.Registry
	switch p.action {
	case actAddName:
		name, err := model.NormalizeName("name", value)
		if err != nil {
			return nil, err
		}
		next := newPrompt(actAddColor, "", "")
		next.name = name
		return next, nil
	case actAddColor:
		var err error
		if kind == model.KindTeam {
			_, err = reg.AddTeam(m.ctx, p.name, value)
		} else {
			_, err = reg.AddPlayer(m.ctx, p.name, value)
		}
		return nil, err
	case actRename:
		if kind == model.KindTeam {
			return nil, reg.RenameTeam(m.ctx, p.target, value)
		}
		return nil, reg.RenamePlayer(m.ctx, p.target, value)
	case actRecolor:
		if kind == model.KindTeam {
			return nil, reg.RecolorTeam(m.ctx, p.target, value)
		}
		return nil, reg.RecolorPlayer(m.ctx, p.target, value)
	}
	return nil, nil
}

func (m *Model) updateSettings(s *settingsScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.goHome()
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(settingsItems))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(settingsItems))
	case "enter", " ":
		cur := m.app.Settings.Get()
		var patch settings.Patch
		switch settingsItem(s.cursor) {
		case settingIncrement:
			next := model.NextIncrement(cur.ScoreIncrement)
			patch.ScoreIncrement = &next
		case settingNegative:
			next := !cur.AllowNegativeScores
			patch.AllowNegativeScores = &next
		case settingTeamMode:
			next := !cur.TeamMode
			patch.TeamMode = &next
		case settingDefaults:
			m.app.Settings.ResetToDefaults(m.ctx)
			return m, nil
		}
		if _, err := m.app.Settings.Update(m.ctx, patch); err != nil {
			m.fail(err)
		}
	}
	return m, nil
}

// selectOptions returns the refs that can be toggled in the current mode.
func (m *Model) selectOptions() []model.Entrant {
	if m.app.Settings.Get().TeamMode {
		teams := m.app.Registry.Teams()
		out := make([]model.Entrant, len(teams))
		for i, t := range teams {
			out[i] = model.Entrant{ID: t.ID, Kind: model.KindTeam, Name: t.Name, Color: t.Color}
		}
		return out
	}
	players := m.app.Registry.Players()
	out := make([]model.Entrant, len(players))
	for i, p := range players {
		out[i] = model.Entrant{ID: p.ID, Kind: model.KindPlayer, Name: p.Name, Color: p.Color}
	}
	return out
}

func (m *Model) updateSelect(s *selectScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.selectOptions()
	s.cursor = clampCursor(s.cursor, len(options))
	switch msg.String() {
	case "esc", "q":
		m.fail(m.app.Engine.Cancel())
		m.goHome()
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(options))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(options))
	case " ", "x":
		if len(options) > 0 {
			m.fail(m.app.Engine.ToggleEntrant(options[s.cursor].Ref()))
		}
	case "enter", "s":
		if _, err := m.app.Engine.Start(m.ctx); err != nil {
			m.fail(err)
			return m, nil
		}
		m.screen = &gameScreen{}
	}
	return m, nil
}

func (m *Model) updateGame(s *gameScreen, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active, ok := m.app.Engine.Active()
	if !ok {
		m.goHome()
		return m, nil
	}
	s.cursor = clampCursor(s.cursor, len(active.Entrants))
	switch msg.String() {
	case "up", "k":
		s.cursor = moveCursor(s.cursor, -1, len(active.Entrants))
	case "down", "j":
		s.cursor = moveCursor(s.cursor, 1, len(active.Entrants))
	case "+", "=", "right", "l":
		m.fail(m.app.Engine.AdjustScore(active.Entrants[s.cursor].ID, 1))
	case "-", "_", "left", "h":
		m.fail(m.app.Engine.AdjustScore(active.Entrants[s.cursor].ID, -1))
	case "i":
		next := model.NextIncrement(m.app.Settings.Get().ScoreIncrement)
		_, err := m.app.Settings.Update(m.ctx, settings.Patch{ScoreIncrement: &next})
		m.fail(err)
	case "e", "enter":
		entry, err := m.app.Engine.End(m.ctx)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		if winner, ok := entry.Winner(); ok {
			m.status = fmt.Sprintf("%s wins with %d", winner.Name, winner.Score)
		}
		m.goHome()
	}
	return m, nil
}

func (m *Model) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.app.Reset(m.ctx); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.status = "All data erased."
		m.goHome()
	case "n", "N", "esc", "q":
		m.goHome()
	}
	return m, nil
}

