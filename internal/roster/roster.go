// Package roster loads player lists from plain text files.
package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one line of a roster file.
type Entry struct {
	Name  string
	Color string
}

// Load reads one player per line from the provided file path.
func Load(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only roster.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads lines of the form "Name" or "Name #rrggbb". Blank lines and
// lines starting with "//" are skipped. Names may contain spaces; a trailing
// token starting with "#" is the colour.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		entry := Entry{Name: line}
		if i := strings.LastIndexByte(line, ' '); i > 0 && strings.HasPrefix(line[i+1:], "#") {
			entry.Name = strings.TrimSpace(line[:i])
			entry.Color = line[i+1:]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}
	return entries, nil
}
