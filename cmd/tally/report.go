package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tally/internal/stats"
)

func newStandingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show player and team standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				out := cmd.OutOrStdout()
				if err := stats.RenderStandings(out, "Players", stats.Standings(e.app.Registry.Players())); err != nil {
					return err
				}
				teams := e.app.Registry.Teams()
				if len(teams) == 0 {
					return nil
				}
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
				return stats.RenderStandings(out, "Teams", stats.TeamStandings(teams))
			})
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		last int
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if last < 0 {
				return fmt.Errorf("--last must be >= 0")
			}
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				n := opts.recent
				if cmd.Flags().Changed("last") {
					n = last
				}
				if all {
					n = e.app.History.Len()
				}
				return stats.RenderHistory(cmd.OutOrStdout(), e.app.History.Recent(n))
			})
		},
	}
	cmd.Flags().IntVar(&last, "last", 0, "number of games to show (default: --recent)")
	cmd.Flags().BoolVar(&all, "all", false, "show every recorded game")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all players, teams, settings and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := confirm(cmd, "Erase all players, teams, settings and history? [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					return printf(cmd, "Aborted.\n")
				}
			}
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				if err := e.app.Reset(e.ctx); err != nil {
					return err
				}
				return printf(cmd, "All data erased.\n")
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	if err := printf(cmd, "%s", question); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
