package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/stats"
)

const (
	swatch      = "●"
	maxNameCell = 20
)

var (
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// palette holds the styles derived from the user's theme.
type palette struct {
	title  lipgloss.Style
	cursor lipgloss.Style
	good   lipgloss.Style
	danger lipgloss.Style
}

func newPalette(theme model.Theme) palette {
	return palette{
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Primary)).Bold(true),
		cursor: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Primary)),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Secondary)).Bold(true),
		danger: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Danger)),
	}
}

func colorSwatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(swatch)
}

func (m *Model) render(s screen) string {
	pal := newPalette(m.app.Settings.Get().Theme)
	var body, help string
	switch s := s.(type) {
	case *homeScreen:
		body, help = m.renderHome(s, pal), "↑/↓ move · enter select · n new game · p players · t teams · s settings · q quit"
	case *playersScreen:
		body, help = m.renderPlayers(s, pal), "a add · r rename · c colour · d remove · esc back"
	case *teamsScreen:
		body, help = m.renderTeams(s, pal), "a add · r rename · c colour · enter members · d remove · esc back"
		if s.members != nil {
			help = "space join/leave · esc back"
		}
	case *settingsScreen:
		body, help = m.renderSettings(s, pal), "enter change · esc back"
	case *selectScreen:
		body, help = m.renderSelect(s, pal), "space toggle · enter start · esc cancel"
	case *gameScreen:
		body, help = m.renderGame(s, pal), "+/- adjust · i increment · e end game"
	case *confirmResetScreen:
		body, help = m.renderConfirmReset(pal), "y erase · n keep"
	}
	if m.prompting() {
		help = "enter confirm · esc cancel"
	}
	lines := []string{body}
	if m.errMsg != "" {
		lines = append(lines, pal.danger.Render(m.errMsg))
	} else if m.status != "" {
		lines = append(lines, pal.good.Render(m.status))
	}
	lines = append(lines, footerStyle.Render(help))
	out := strings.Join(lines, "\n\n")
	if m.width == 0 || m.height == 0 {
		return out
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, out)
}

func (m *Model) prompting() bool {
	switch s := m.screen.(type) {
	case *playersScreen:
		return s.prompt != nil
	case *teamsScreen:
		return s.prompt != nil
	}
	return false
}

func (m *Model) renderHome(s *homeScreen, pal palette) string {
	var menu []string
	for i, item := range homeItems {
		menu = append(menu, menuLine(pal, i == s.cursor, item))
	}
	sections := []string{
		pal.title.Render("Tally"),
		strings.Join(menu, "\n"),
		pal.title.Render("Standings"),
		standingsTable(stats.Standings(m.app.Registry.Players())),
	}
	if m.app.Settings.Get().TeamMode {
		sections = append(sections, pal.title.Render("Teams"), standingsTable(stats.TeamStandings(m.app.Registry.Teams())))
	}
	sections = append(sections, pal.title.Render("Recent games"), m.renderRecent())
	return strings.Join(sections, "\n\n")
}

func standingsTable(rows []stats.Row) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No entries yet.")
	}
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "", Width: 1},
		{Title: "Name", Width: maxNameCell},
		{Title: "W", Width: 4},
		{Title: "L", Width: 4},
		{Title: "Win%", Width: 5},
	}
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		rate := "-"
		if r.Played() > 0 {
			rate = fmt.Sprintf("%.0f%%", r.WinRate()*100)
		}
		tableRows[i] = table.Row{
			strconv.Itoa(i + 1),
			swatch,
			runewidth.Truncate(r.Name, maxNameCell, "…"),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			rate,
		}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(len(tableRows)+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell
	t.SetStyles(styles)
	t.Blur()
	return t.View()
}

func (m *Model) renderRecent() string {
	entries := m.app.History.Recent(m.recent)
	if len(entries) == 0 {
		return mutedStyle.Render("No games played yet.")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		winner, ok := e.Winner()
		name := "?"
		if ok {
			name = colorSwatch(winner.Color) + " " + winner.Name
		}
		ts := e.Timestamp.Local().Format("Jan 2 15:04")
		lines = append(lines, fmt.Sprintf("%s  %s won (%d entrants)", mutedStyle.Render(ts), name, len(e.Entrants)))
	}
	return strings.Join(lines, "\n")
}

func menuLine(pal palette, selected bool, text string) string {
	if selected {
		return pal.cursor.Render("› " + text)
	}
	return textStyle.Render("  " + text)
}

func (m *Model) renderPlayers(s *playersScreen, pal palette) string {
	players := m.app.Registry.Players()
	lines := []string{pal.title.Render("Players")}
	if len(players) == 0 {
		lines = append(lines, mutedStyle.Render("No players yet. Press a to add one."))
	}
	for i, p := range players {
		team := ""
		if t, ok := m.app.Registry.TeamOf(p.ID); ok {
			team = mutedStyle.Render(" [" + t.Name + "]")
		}
		record := mutedStyle.Render(fmt.Sprintf("  %dW %dL", p.Wins, p.Losses))
		lines = append(lines, menuLine(pal, i == s.cursor && s.prompt == nil, "")+colorSwatch(p.Color)+" "+p.Name+team+record)
	}
	if s.prompt != nil {
		lines = append(lines, "", s.prompt.input.View())
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTeams(s *teamsScreen, pal palette) string {
	if s.members != nil {
		return m.renderMembers(s.members, pal)
	}
	teams := m.app.Registry.Teams()
	lines := []string{pal.title.Render("Teams")}
	if len(teams) == 0 {
		lines = append(lines, mutedStyle.Render("No teams yet. Press a to add one."))
	}
	for i, t := range teams {
		info := mutedStyle.Render(fmt.Sprintf("  %d members  %dW %dL", len(t.MemberPlayerIDs), t.Wins, t.Losses))
		lines = append(lines, menuLine(pal, i == s.cursor && s.prompt == nil, "")+colorSwatch(t.Color)+" "+t.Name+info)
	}
	if s.prompt != nil {
		lines = append(lines, "", s.prompt.input.View())
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderMembers(v *membersView, pal palette) string {
	team, ok := m.app.Registry.Team(v.teamID)
	if !ok {
		return ""
	}
	lines := []string{pal.title.Render("Members of " + team.Name)}
	players := m.app.Registry.Players()
	if len(players) == 0 {
		lines = append(lines, mutedStyle.Render("No players yet."))
	}
	for i, p := range players {
		mark := "[ ]"
		note := ""
		if team.HasMember(p.ID) {
			mark = "[x]"
		} else if other, ok := m.app.Registry.TeamOf(p.ID); ok {
			note = mutedStyle.Render(" (on " + other.Name + ")")
		}
		lines = append(lines, menuLine(pal, i == v.cursor, mark+" ")+colorSwatch(p.Color)+" "+p.Name+note)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderSettings(s *settingsScreen, pal palette) string {
	cur := m.app.Settings.Get()
	values := []string{
		strconv.Itoa(cur.ScoreIncrement),
		onOff(cur.AllowNegativeScores),
		onOff(cur.TeamMode),
		"",
	}
	lines := []string{pal.title.Render("Settings")}
	for i, item := range settingsItems {
		label := item
		if values[i] != "" {
			label = fmt.Sprintf("%-24s %s", item, values[i])
		}
		lines = append(lines, menuLine(pal, i == s.cursor, label))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *Model) renderSelect(s *selectScreen, pal palette) string {
	noun, minimum := "players", 1
	if m.app.Settings.Get().TeamMode {
		noun, minimum = "teams", 2
	}
	lines := []string{
		pal.title.Render("Choose " + noun),
		mutedStyle.Render(fmt.Sprintf("At least %d required.", minimum)),
	}
	options := m.selectOptions()
	if len(options) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing to choose. Add "+noun+" first."))
	}
	order := map[model.EntrantRef]int{}
	for i, c := range m.app.Engine.Candidates() {
		order[c.Ref()] = i + 1
	}
	for i, o := range options {
		mark := "[ ]"
		if n, ok := order[o.Ref()]; ok {
			mark = fmt.Sprintf("[%d]", n)
		}
		lines = append(lines, menuLine(pal, i == s.cursor, mark+" ")+colorSwatch(o.Color)+" "+o.Name)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderGame(s *gameScreen, pal palette) string {
	active, ok := m.app.Engine.Active()
	if !ok {
		return ""
	}
	cfg := m.app.Settings.Get()
	lines := []string{
		pal.title.Render("Game in progress"),
		mutedStyle.Render(fmt.Sprintf("Increment %d · started %s", cfg.ScoreIncrement, active.StartedAt.Local().Format("15:04"))),
	}
	nameWidth := 0
	for _, e := range active.Entrants {
		if w := runewidth.StringWidth(e.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for i, e := range active.Entrants {
		name := runewidth.FillRight(e.Name, nameWidth)
		score := textStyle.Render(fmt.Sprintf("%4d", e.Score))
		lines = append(lines, menuLine(pal, i == s.cursor, "")+colorSwatch(e.Color)+" "+name+"  "+score)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderConfirmReset(pal palette) string {
	return boxStyle.Render(strings.Join([]string{
		pal.danger.Render("Erase all players, teams, settings and history?"),
		mutedStyle.Render("This cannot be undone."),
	}, "\n"))
}
