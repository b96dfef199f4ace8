// Package main provides the CLI entrypoint for tally.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tally/internal/app"
	"github.com/verte-zerg/tally/internal/clock"
	"github.com/verte-zerg/tally/internal/config"
	"github.com/verte-zerg/tally/internal/store/redis"
	"github.com/verte-zerg/tally/internal/tui"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "tally",
		Short:         "Local scoreboard for players and teams",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	bindPersistentFlags(rootCmd, opts)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPlayersCmd(opts))
	rootCmd.AddCommand(newTeamsCmd(opts))
	rootCmd.AddCommand(newSettingsCmd(opts))
	rootCmd.AddCommand(newStandingsCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	return rootCmd
}

func runTUI(cmd *cobra.Command, opts *options) error {
	env, err := openEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()

	model := tui.NewModel(env.ctx, env.app, env.logger, opts.recent)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(env.ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// env is an opened application with its logger.
type env struct {
	ctx     context.Context
	app     *app.App
	logger  *slog.Logger
	closers []io.Closer
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
}

func openEnv(cmd *cobra.Command, opts *options) (*env, error) {
	if err := opts.resolve(cmd); err != nil {
		return nil, err
	}
	logger, logFile, err := config.OpenLogger(opts.logFile, opts.logLevel)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	redisCfg := redis.DefaultConfig()
	redisCfg.URL = opts.redisURL
	redisCfg.Prefix = opts.redisPrefix

	a, err := app.Open(ctx, app.Options{
		Backend:      opts.backend,
		DBPath:       opts.dbPath,
		Redis:        redisCfg,
		HistoryLimit: opts.historyLimit,
		Logger:       logger,
		Clock:        clock.Real{},
	})
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return &env{ctx: ctx, app: a, logger: logger, closers: []io.Closer{logFile, a}}, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
