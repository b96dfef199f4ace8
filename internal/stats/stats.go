// Package stats contains standings calculations and reporting.
package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/tally/internal/model"
)

// Row is one line of a standings table.
type Row struct {
	Name    string
	Color   string
	Wins    int
	Losses  int
	Members int
}

// Played returns the number of settled sessions.
func (r Row) Played() int {
	return r.Wins + r.Losses
}

// WinRate returns wins / (wins + losses), or 0 when nothing was played.
func (r Row) WinRate() float64 {
	if r.Played() == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Played())
}

// Standings ranks players by wins, then fewer losses, then name.
func Standings(players []model.Player) []Row {
	rows := make([]Row, 0, len(players))
	for _, p := range players {
		rows = append(rows, Row{Name: p.Name, Color: p.Color, Wins: p.Wins, Losses: p.Losses})
	}
	sortRows(rows)
	return rows
}

// TeamStandings ranks teams the same way as Standings.
func TeamStandings(teams []model.Team) []Row {
	rows := make([]Row, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, Row{
			Name:    t.Name,
			Color:   t.Color,
			Wins:    t.Wins,
			Losses:  t.Losses,
			Members: len(t.MemberPlayerIDs),
		})
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].Losses != rows[j].Losses {
			return rows[i].Losses < rows[j].Losses
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
}
