package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupEnv points every XDG directory into a temp dir so commands never touch
// the real home.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, name := range []string{
		"TALLY_BACKEND", "TALLY_DB", "TALLY_REDIS_URL", "TALLY_REDIS_PREFIX",
		"TALLY_HISTORY_LIMIT", "TALLY_RECENT", "TALLY_LOG_LEVEL", "TALLY_LOG_FILE",
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("tally %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestPlayersLifecycle(t *testing.T) {
	setupEnv(t)
	mustRun(t, "players", "add", "Ann", "--color", "#0f0")
	mustRun(t, "players", "add", "Bo")
	out := mustRun(t, "players")
	if !strings.Contains(out, "Ann") || !strings.Contains(out, "#00ff00") || !strings.Contains(out, "#ff0000") {
		t.Fatalf("unexpected players list:\n%s", out)
	}

	mustRun(t, "players", "rename", "ann", "Anna")
	mustRun(t, "players", "recolor", "Anna", "#123456")
	out = mustRun(t, "players", "list")
	if !strings.Contains(out, "Anna") || !strings.Contains(out, "#123456") {
		t.Fatalf("rename/recolor not applied:\n%s", out)
	}

	mustRun(t, "players", "rm", "Bo")
	out = mustRun(t, "players")
	if strings.Contains(out, "Bo ") {
		t.Fatalf("expected Bo removed:\n%s", out)
	}
	if _, err := run(t, "", "players", "rm", "Nobody"); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestPlayersAddRejectsBadColor(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "players", "add", "Ann", "--color", "green"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestTeamsMembership(t *testing.T) {
	setupEnv(t)
	mustRun(t, "players", "add", "Ann")
	mustRun(t, "teams", "add", "Red")
	mustRun(t, "teams", "add", "Blue")
	mustRun(t, "teams", "join", "Ann", "Red")
	mustRun(t, "teams", "join", "Ann", "Blue")
	out := mustRun(t, "teams")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Red") && strings.Contains(line, "Ann") {
			t.Fatalf("membership should be exclusive:\n%s", out)
		}
	}
	if !strings.Contains(out, "Ann") {
		t.Fatalf("expected Ann on Blue:\n%s", out)
	}
	mustRun(t, "teams", "leave", "Ann", "Blue")
	mustRun(t, "teams", "rm", "Red")
	out = mustRun(t, "teams")
	if strings.Contains(out, "Red") || strings.Contains(out, "Ann") {
		t.Fatalf("unexpected teams:\n%s", out)
	}
}

func TestSettingsCommands(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "settings", "set", "--increment", "5", "--team-mode")
	if !strings.Contains(out, "Score increment:       5") || !strings.Contains(out, "Team mode:             true") {
		t.Fatalf("unexpected settings:\n%s", out)
	}
	if _, err := run(t, "", "settings", "set", "--increment", "3"); err == nil {
		t.Fatalf("expected invalid increment error")
	}
	out = mustRun(t, "settings", "set", "--json", `{"allowNegativeScores":true}`)
	if !strings.Contains(out, "Allow negative scores: true") || !strings.Contains(out, "Score increment:       5") {
		t.Fatalf("unexpected settings after json:\n%s", out)
	}
	if _, err := run(t, "", "settings", "set", "--json", `{"volume":1}`); err == nil {
		t.Fatalf("expected unknown field error")
	}
	out = mustRun(t, "settings", "reset")
	if !strings.Contains(out, "Score increment:       1") {
		t.Fatalf("expected defaults:\n%s", out)
	}
}

func TestStandingsAndHistoryEmpty(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "standings")
	if !strings.Contains(out, "none yet") {
		t.Fatalf("unexpected standings:\n%s", out)
	}
	out = mustRun(t, "history", "--last", "3")
	if !strings.Contains(out, "No games played yet.") {
		t.Fatalf("unexpected history:\n%s", out)
	}
}

func TestResetPromptsUnlessYes(t *testing.T) {
	setupEnv(t)
	mustRun(t, "players", "add", "Ann")

	out, err := run(t, "n\n", "reset")
	if err != nil || !strings.Contains(out, "Aborted.") {
		t.Fatalf("expected abort, got %v:\n%s", err, out)
	}
	if out := mustRun(t, "players"); !strings.Contains(out, "Ann") {
		t.Fatalf("declined reset must keep data:\n%s", out)
	}

	out, err = run(t, "y\n", "reset")
	if err != nil || !strings.Contains(out, "All data erased.") {
		t.Fatalf("expected reset, got %v:\n%s", err, out)
	}
	mustRun(t, "players", "add", "Bo")
	mustRun(t, "reset", "--yes")
	if out := mustRun(t, "players"); !strings.Contains(out, "No players yet.") {
		t.Fatalf("expected empty registry:\n%s", out)
	}
}

func TestConfigFileAndEnvPrecedence(t *testing.T) {
	dir := setupEnv(t)
	cfgDir := filepath.Join(dir, "config", "tally")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	fileDB := filepath.Join(dir, "from-file.db")
	content := "[storage]\npath = \"" + filepath.ToSlash(fileDB) + "\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	mustRun(t, "players", "add", "Ann")
	if _, err := os.Stat(fileDB); err != nil {
		t.Fatalf("expected database at config path: %v", err)
	}

	t.Setenv("TALLY_BACKEND", "memory")
	if out := mustRun(t, "players"); !strings.Contains(out, "No players yet.") {
		t.Fatalf("env backend should override the file:\n%s", out)
	}

	flagDB := filepath.Join(dir, "from-flag.db")
	mustRun(t, "--backend", "sqlite", "--db", flagDB, "players", "add", "Bo")
	if _, err := os.Stat(flagDB); err != nil {
		t.Fatalf("expected database at flag path: %v", err)
	}
}

func TestRejectsInvalidOptions(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "--backend", "floppy", "players"); err == nil {
		t.Fatalf("expected backend error")
	}
	if _, err := run(t, "", "--log-level", "loud", "players"); err == nil {
		t.Fatalf("expected log level error")
	}
	if _, err := run(t, "", "--history-limit", "-1", "players"); err == nil {
		t.Fatalf("expected history limit error")
	}
}

func TestRejectsUnparsableEnvValue(t *testing.T) {
	setupEnv(t)
	t.Setenv("TALLY_RECENT", "abc")
	_, err := run(t, "", "players")
	if err == nil {
		t.Fatalf("expected env parse error")
	}
	if !strings.Contains(err.Error(), "--recent: invalid TALLY_RECENT value") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := setupEnv(t)
	cfgDir := filepath.Join(dir, "config", "tally")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "", "players"); err != nil {
		t.Fatalf("template should load cleanly: %v", err)
	}
}

func TestPlayersImport(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "players", "add", "Ann")
	path := filepath.Join(dir, "roster.txt")
	if err := os.WriteFile(path, []byte("ann\nBo #00f\nCy\nBo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := mustRun(t, "players", "import", path)
	if !strings.Contains(out, "Imported 2 of 4 players") {
		t.Fatalf("unexpected import output:\n%s", out)
	}
	out = mustRun(t, "players")
	if !strings.Contains(out, "#0000ff") || !strings.Contains(out, "Cy") {
		t.Fatalf("unexpected players:\n%s", out)
	}
}
