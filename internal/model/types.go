// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultColor is used when a player or team is added without a colour.
const DefaultColor = "#ff0000"

// DefaultRecent is the number of history entries shown when no count is given.
const DefaultRecent = 5

// ID is an opaque unique token for players, teams and sessions.
type ID string

// UnmarshalJSON accepts both string and numeric ids. Older saves used
// millisecond timestamps as ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw token.
func (id ID) String() string {
	return string(id)
}

// Short returns the first eight characters, enough to address an id on the CLI.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Player is a registered competitor.
type Player struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Team groups players. A player belongs to at most one team.
type Team struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	MemberPlayerIDs []ID   `json:"memberPlayerIds"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
}

// HasMember reports whether the player is on the team.
func (t Team) HasMember(playerID ID) bool {
	for _, id := range t.MemberPlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Theme holds the accent colours.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Danger    string `json:"danger"`
}

// Settings is the singleton configuration record.
type Settings struct {
	ScoreIncrement      int   `json:"scoreIncrement"`
	AllowNegativeScores bool  `json:"allowNegativeScores"`
	TeamMode            bool  `json:"teamMode"`
	Theme               Theme `json:"theme"`
}

// ScoreIncrements lists the allowed values for Settings.ScoreIncrement in cycle order.
var ScoreIncrements = []int{1, 2, 5, 10}

// DefaultSettings returns the settings used on first start and after a reset.
func DefaultSettings() Settings {
	return Settings{
		ScoreIncrement:      1,
		AllowNegativeScores: false,
		TeamMode:            false,
		Theme: Theme{
			Primary:   "#3b82f6",
			Secondary: "#22c55e",
			Danger:    "#ef4444",
		},
	}
}

// ValidIncrement reports whether n is an allowed score increment.
func ValidIncrement(n int) bool {
	for _, v := range ScoreIncrements {
		if v == n {
			return true
		}
	}
	return false
}

// NextIncrement returns the increment after n, wrapping around.
func NextIncrement(n int) int {
	for i, v := range ScoreIncrements {
		if v == n {
			return ScoreIncrements[(i+1)%len(ScoreIncrements)]
		}
	}
	return ScoreIncrements[0]
}

// EntrantKind distinguishes player and team entrants.
type EntrantKind string

// Entrant kinds.
const (
	KindPlayer EntrantKind = "player"
	KindTeam   EntrantKind = "team"
)

// EntrantRef points at a registry record.
type EntrantRef struct {
	Kind EntrantKind
	ID   ID
}

// Entrant is a value snapshot of a player or team taken when the session was
// set up, plus its live score.
type Entrant struct {
	ID    ID          `json:"id"`
	Kind  EntrantKind `json:"kind,omitempty"`
	Name  string      `json:"name"`
	Color string      `json:"color"`
	Score int         `json:"score"`
}

// Ref returns the registry reference the entrant was copied from.
func (e Entrant) Ref() EntrantRef {
	kind := e.Kind
	if kind == "" {
		kind = KindPlayer
	}
	return EntrantRef{Kind: kind, ID: e.ID}
}

// Session is one contest with a fixed, ordered set of entrants.
type Session struct {
	ID        ID        `json:"id"`
	Entrants  []Entrant `json:"entrants"`
	StartedAt time.Time `json:"startedAt"`
}

// Result is the settlement outcome for one entrant.
type Result struct {
	Ref EntrantRef
	Won bool
}

// HistoryEntry records a settled session. It is never modified after creation.
type HistoryEntry struct {
	SessionID       ID        `json:"sessionId"`
	Entrants        []Entrant `json:"entrants"`
	WinnerEntrantID ID        `json:"winnerEntrantId"`
	Timestamp       time.Time `json:"timestamp"`
}

// Winner returns the winning entrant snapshot.
func (h HistoryEntry) Winner() (Entrant, bool) {
	for _, e := range h.Entrants {
		if e.ID == h.WinnerEntrantID {
			return e, true
		}
	}
	return Entrant{}, false
}

// UnmarshalJSON also accepts the older game record shape
// {id, players, winnerId, timestamp}.
func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		SessionID       ID        `json:"sessionId"`
		Entrants        []Entrant `json:"entrants"`
		WinnerEntrantID ID        `json:"winnerEntrantId"`
		Timestamp       time.Time `json:"timestamp"`

		LegacyID       ID        `json:"id"`
		LegacyPlayers  []Entrant `json:"players"`
		LegacyWinnerID ID        `json:"winnerId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = HistoryEntry{
		SessionID:       raw.SessionID,
		Entrants:        raw.Entrants,
		WinnerEntrantID: raw.WinnerEntrantID,
		Timestamp:       raw.Timestamp,
	}
	if h.SessionID == "" {
		h.SessionID = raw.LegacyID
	}
	if h.Entrants == nil {
		h.Entrants = raw.LegacyPlayers
	}
	if h.WinnerEntrantID == "" {
		h.WinnerEntrantID = raw.LegacyWinnerID
	}
	return nil
}

// NormalizeColor validates a #rgb or #rrggbb colour and returns the
// lowercase long form. Empty input yields DefaultColor.
func NormalizeColor(color string) (string, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		return DefaultColor, nil
	}
	if !strings.HasPrefix(color, "#") {
		return "", &ValidationError{Field: "color", Reason: fmt.Sprintf("%q must start with #", color)}
	}
	hex := color[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return "", &ValidationError{Field: "color", Reason: fmt.Sprintf("%q must be #rgb or #rrggbb", color)}
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", &ValidationError{Field: "color", Reason: fmt.Sprintf("%q is not a hex colour", color)}
	}
	return "#" + hex, nil
}

// NormalizeName trims a display name and rejects empty results.
func NormalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return name, nil
}
