package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/registry"
	"github.com/verte-zerg/tally/internal/roster"
	"github.com/verte-zerg/tally/internal/stats"
)

func newPlayersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List and manage players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, listPlayers)
		},
	}

	var color string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				p, err := e.app.Registry.AddPlayer(e.ctx, args[0], color)
				if err != nil {
					return err
				}
				return printf(cmd, "Added player %s (%s)\n", p.Name, p.ID.Short())
			})
		},
	}
	add.Flags().StringVar(&color, "color", "", "colour as #rgb or #rrggbb (default "+model.DefaultColor+")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List players",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, opts, listPlayers)
			},
		},
		add,
		&cobra.Command{
			Use:   "rename PLAYER NAME",
			Short: "Rename a player",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, opts, func(_ *cobra.Command, e *env) error {
					p, err := findPlayer(e.app.Registry, args[0])
					if err != nil {
						return err
					}
					return e.app.Registry.RenamePlayer(e.ctx, p.ID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "recolor PLAYER COLOR",
			Short: "Change a player's colour",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, opts, func(_ *cobra.Command, e *env) error {
					p, err := findPlayer(e.app.Registry, args[0])
					if err != nil {
						return err
					}
					return e.app.Registry.RecolorPlayer(e.ctx, p.ID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Add players from a file, one \"Name [#colour]\" per line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := roster.Load(args[0])
				if err != nil {
					return fmt.Errorf("failed to load roster: %w", err)
				}
				return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
					return importPlayers(cmd, e, entries)
				})
			},
		},
		&cobra.Command{
			Use:     "rm PLAYER",
			Aliases: []string{"remove"},
			Short:   "Remove a player",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
					p, err := findPlayer(e.app.Registry, args[0])
					if err != nil {
						return err
					}
					e.app.Registry.RemovePlayer(e.ctx, p.ID)
					return printf(cmd, "Removed player %s\n", p.Name)
				})
			},
		},
	)
	return cmd
}

func listPlayers(cmd *cobra.Command, e *env) error {
	players := e.app.Registry.Players()
	if len(players) == 0 {
		return printf(cmd, "No players yet.\n")
	}
	rows := make([][]string, len(players))
	for i, p := range players {
		team := ""
		if t, ok := e.app.Registry.TeamOf(p.ID); ok {
			team = t.Name
		}
		rows[i] = []string{p.ID.Short(), p.Name, p.Color, team, strconv.Itoa(p.Wins), strconv.Itoa(p.Losses)}
	}
	return stats.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Colour", "Team", "W", "L"}, rows, map[int]bool{4: true, 5: true})
}

// importPlayers adds every entry whose name is not already registered.
func importPlayers(cmd *cobra.Command, e *env, entries []roster.Entry) error {
	known := map[string]bool{}
	for _, p := range e.app.Registry.Players() {
		known[strings.ToLower(p.Name)] = true
	}
	added := 0
	for _, entry := range entries {
		key := strings.ToLower(strings.TrimSpace(entry.Name))
		if known[key] {
			continue
		}
		if _, err := e.app.Registry.AddPlayer(e.ctx, entry.Name, entry.Color); err != nil {
			return fmt.Errorf("%s: %w", entry.Name, err)
		}
		known[key] = true
		added++
	}
	return printf(cmd, "Imported %d of %d players\n", added, len(entries))
}

func newTeamsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List and manage teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, listTeams)
		},
	}

	var color string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
				t, err := e.app.Registry.AddTeam(e.ctx, args[0], color)
				if err != nil {
					return err
				}
				return printf(cmd, "Added team %s (%s)\n", t.Name, t.ID.Short())
			})
		},
	}
	add.Flags().StringVar(&color, "color", "", "colour as #rgb or #rrggbb (default "+model.DefaultColor+")")

	membership := func(use, short string, join bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " PLAYER TEAM",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, opts, func(_ *cobra.Command, e *env) error {
					p, err := findPlayer(e.app.Registry, args[0])
					if err != nil {
						return err
					}
					t, err := findTeam(e.app.Registry, args[1])
					if err != nil {
						return err
					}
					if join {
						return e.app.Registry.AddPlayerToTeam(e.ctx, p.ID, t.ID)
					}
					return e.app.Registry.RemovePlayerFromTeam(e.ctx, p.ID, t.ID)
				})
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List teams",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, opts, listTeams)
			},
		},
		add,
		&cobra.Command{
			Use:     "rm TEAM",
			Aliases: []string{"remove"},
			Short:   "Remove a team; its members become team-less",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, opts, func(cmd *cobra.Command, e *env) error {
					t, err := findTeam(e.app.Registry, args[0])
					if err != nil {
						return err
					}
					e.app.Registry.RemoveTeam(e.ctx, t.ID)
					return printf(cmd, "Removed team %s\n", t.Name)
				})
			},
		},
		membership("join", "Add a player to a team, leaving any other team", true),
		membership("leave", "Remove a player from a team", false),
	)
	return cmd
}

func listTeams(cmd *cobra.Command, e *env) error {
	teams := e.app.Registry.Teams()
	if len(teams) == 0 {
		return printf(cmd, "No teams yet.\n")
	}
	rows := make([][]string, len(teams))
	for i, t := range teams {
		names := make([]string, 0, len(t.MemberPlayerIDs))
		for _, id := range t.MemberPlayerIDs {
			if p, ok := e.app.Registry.Player(id); ok {
				names = append(names, p.Name)
			}
		}
		rows[i] = []string{t.ID.Short(), t.Name, t.Color, strings.Join(names, ", "), strconv.Itoa(t.Wins), strconv.Itoa(t.Losses)}
	}
	return stats.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Colour", "Members", "W", "L"}, rows, map[int]bool{4: true, 5: true})
}

// findPlayer resolves a full id, a unique id prefix or an exact name.
func findPlayer(reg *registry.Registry, arg string) (model.Player, error) {
	players := reg.Players()
	refs := make([]ref, len(players))
	for i, p := range players {
		refs[i] = ref{id: p.ID, name: p.Name}
	}
	idx, err := resolve("player", refs, arg)
	if err != nil {
		return model.Player{}, err
	}
	return players[idx], nil
}

// findTeam resolves a team the same way as findPlayer.
func findTeam(reg *registry.Registry, arg string) (model.Team, error) {
	teams := reg.Teams()
	refs := make([]ref, len(teams))
	for i, t := range teams {
		refs[i] = ref{id: t.ID, name: t.Name}
	}
	idx, err := resolve("team", refs, arg)
	if err != nil {
		return model.Team{}, err
	}
	return teams[idx], nil
}

type ref struct {
	id   model.ID
	name string
}

func resolve(kind string, refs []ref, arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	for i, r := range refs {
		if string(r.id) == arg {
			return i, nil
		}
	}
	match := -1
	for i, r := range refs {
		if (arg != "" && strings.HasPrefix(string(r.id), arg)) || strings.EqualFold(r.name, arg) {
			if match >= 0 {
				return -1, fmt.Errorf("%s %q is ambiguous", kind, arg)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, &model.NotFoundError{Kind: kind, ID: model.ID(arg)}
	}
	return match, nil
}

func printf(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// withEnv opens the application for the duration of fn.
func withEnv(cmd *cobra.Command, opts *options, fn func(*cobra.Command, *env) error) error {
	e, err := openEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(cmd, e)
}
