package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/settings"
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change scoring settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				return printSettings(cmd, e.app.Settings.Get())
			})
		},
	}

	var (
		increment int
		negative  bool
		teamMode  bool
		primary   string
		secondary string
		danger    string
		rawJSON   string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				var (
					updated model.Settings
					err     error
				)
				if cmd.Flags().Changed("json") {
					updated, err = e.app.Settings.UpdateJSON(e.ctx, []byte(rawJSON))
				} else {
					var patch settings.Patch
					if cmd.Flags().Changed("increment") {
						patch.ScoreIncrement = &increment
					}
					if cmd.Flags().Changed("negative") {
						patch.AllowNegativeScores = &negative
					}
					if cmd.Flags().Changed("team-mode") {
						patch.TeamMode = &teamMode
					}
					theme := settings.ThemePatch{}
					if cmd.Flags().Changed("primary") {
						theme.Primary = &primary
					}
					if cmd.Flags().Changed("secondary") {
						theme.Secondary = &secondary
					}
					if cmd.Flags().Changed("danger") {
						theme.Danger = &danger
					}
					if theme != (settings.ThemePatch{}) {
						patch.Theme = &theme
					}
					updated, err = e.app.Settings.Update(e.ctx, patch)
				}
				if err != nil {
					return err
				}
				return printSettings(cmd, updated)
			})
		},
	}
	set.Flags().IntVar(&increment, "increment", 1, fmt.Sprintf("score increment, one of %v", model.ScoreIncrements))
	set.Flags().BoolVar(&negative, "negative", false, "allow scores below zero")
	set.Flags().BoolVar(&teamMode, "team-mode", false, "play with teams instead of players")
	set.Flags().StringVar(&primary, "primary", "", "primary theme colour")
	set.Flags().StringVar(&secondary, "secondary", "", "secondary theme colour")
	set.Flags().StringVar(&danger, "danger", "", "danger theme colour")
	set.Flags().StringVar(&rawJSON, "json", "", `partial settings as JSON, e.g. '{"scoreIncrement":5}'`)
	set.MarkFlagsMutuallyExclusive("json", "increment")
	set.MarkFlagsMutuallyExclusive("json", "negative")
	set.MarkFlagsMutuallyExclusive("json", "team-mode")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
					return printSettings(cmd, e.app.Settings.Get())
				})
			},
		},
		set,
		&cobra.Command{
			Use:   "reset",
			Short: "Restore default settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
					return printSettings(cmd, e.app.Settings.ResetToDefaults(e.ctx))
				})
			},
		},
	)
	return cmd
}

func printSettings(cmd *cobra.Command, s model.Settings) error {
	return printf(cmd, "Score increment:       %d\nAllow negative scores: %t\nTeam mode:             %t\nTheme:                 primary %s, secondary %s, danger %s\n",
		s.ScoreIncrement, s.AllowNegativeScores, s.TeamMode, s.Theme.Primary, s.Theme.Secondary, s.Theme.Danger)
}
