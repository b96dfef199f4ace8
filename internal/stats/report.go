package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/tally/internal/model"
)

const (
	swatch        = "●"
	colorReset    = "\x1b[0m"
	entrantsWidth = 48
)

// RenderStandings prints a ranked table. Team rows carry a member count.
func RenderStandings(w io.Writer, title string, rows []Row) error {
	return renderStandings(w, title, rows, shouldUseColor(w))
}

func renderStandings(w io.Writer, title string, rows []Row, useColor bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "  none yet")
		return err
	}
	showMembers := false
	for _, r := range rows {
		if r.Members > 0 {
			showMembers = true
			break
		}
	}
	headers := []string{"#", "Name", "W", "L", "Win%"}
	if showMembers {
		headers = append(headers, "Members")
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		rate := "-"
		if r.Played() > 0 {
			rate = fmt.Sprintf("%.0f%%", r.WinRate()*100)
		}
		cells[i] = []string{strconv.Itoa(i + 1), r.Name, strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), rate}
		if showMembers {
			cells[i] = append(cells[i], strconv.Itoa(r.Members))
		}
	}
	lines := formatTable(headers, cells, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true})
	for i, line := range lines {
		prefix := "  "
		if useColor {
			prefix = "    "
			if i > 0 {
				prefix = "  " + colorize(rows[i-1].Color, swatch) + " "
			}
		}
		if _, err := fmt.Fprintln(w, prefix+line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints settled sessions in the given order.
func RenderHistory(w io.Writer, entries []model.HistoryEntry) error {
	return renderHistory(w, entries, shouldUseColor(w))
}

func renderHistory(w io.Writer, entries []model.HistoryEntry, useColor bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	cells := make([][]string, len(entries))
	winnerColors := make([]string, len(entries))
	for i, e := range entries {
		winner, ok := e.Winner()
		name := "?"
		if ok {
			name = fmt.Sprintf("%s (%d)", winner.Name, winner.Score)
			winnerColors[i] = winner.Color
		}
		cells[i] = []string{formatTimestamp(e.Timestamp), name, truncate(entrantSummary(e.Entrants), entrantsWidth)}
	}
	lines := formatTable([]string{"When", "Winner", "Entrants"}, cells, nil)
	for i, line := range lines {
		prefix := "  "
		if useColor {
			prefix = "    "
			if i > 0 && winnerColors[i-1] != "" {
				prefix = "  " + colorize(winnerColors[i-1], swatch) + " "
			}
		}
		if _, err := fmt.Fprintln(w, prefix+line); err != nil {
			return err
		}
	}
	return nil
}

func entrantSummary(entrants []model.Entrant) string {
	parts := make([]string, len(entrants))
	for i, e := range entrants {
		parts[i] = fmt.Sprintf("%s %d", e.Name, e.Score)
	}
	return strings.Join(parts, ", ")
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// colorize wraps text in a 24-bit foreground escape for a #rrggbb colour.
func colorize(hex, text string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return text
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return text
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s%s", v>>16&0xff, v>>8&0xff, v&0xff, text, colorReset)
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
