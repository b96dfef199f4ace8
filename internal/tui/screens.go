package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/verte-zerg/tally/internal/model"
)

// screen is the closed set of views. Each screen carries only its own data.
type screen interface {
	isScreen()
}

type homeScreen struct {
	cursor int
}

type playersScreen struct {
	cursor int
	prompt *prompt
}

type teamsScreen struct {
	cursor int
	prompt *prompt
	// members is set while editing one team's membership.
	members *membersView
}

type membersView struct {
	teamID model.ID
	cursor int
}

type settingsScreen struct {
	cursor int
}

type selectScreen struct {
	cursor int
}

type gameScreen struct {
	cursor int
}

type confirmResetScreen struct{}

func (*homeScreen) isScreen()         {}
func (*playersScreen) isScreen()      {}
func (*teamsScreen) isScreen()        {}
func (*settingsScreen) isScreen()     {}
func (*selectScreen) isScreen()       {}
func (*gameScreen) isScreen()         {}
func (*confirmResetScreen) isScreen() {}

type homeItem int

const (
	homeNewGame homeItem = iota
	homePlayers
	homeTeams
	homeSettings
	homeReset
	homeQuit
)

var homeItems = []string{"New game", "Players", "Teams", "Settings", "Reset all data", "Quit"}

type settingsItem int

const (
	settingIncrement settingsItem = iota
	settingNegative
	settingTeamMode
	settingDefaults
)

var settingsItems = []string{"Score increment", "Allow negative scores", "Team mode", "Restore defaults"}

type promptAction int

const (
	actAddName promptAction = iota
	actAddColor
	actRename
	actRecolor
)

// prompt is an inline text field bound to one registry mutation.
type prompt struct {
	action promptAction
	target model.ID
	// name holds the accepted name while the colour is asked for.
	name  string
	input textinput.Model
}

func newPrompt(action promptAction, target model.ID, value string) *prompt {
	input := textinput.New()
	input.CharLimit = 40
	input.Cursor.SetMode(cursor.CursorStatic)
	switch action {
	case actAddName:
		input.Prompt = "Name: "
	case actRename:
		input.Prompt = "New name: "
	case actAddColor, actRecolor:
		input.Prompt = "Colour (#rrggbb): "
		input.Placeholder = model.DefaultColor
	}
	input.SetValue(value)
	input.Focus()
	return &prompt{action: action, target: target, input: input}
}

func clampCursor(cursor, n int) int {
	if n <= 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func moveCursor(cursor, delta, n int) int {
	return clampCursor(cursor+delta, n)
}
