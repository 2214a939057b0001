package main

import (
	"fmt"
	"time"

	"campaign-server/internal/auth"
	"campaign-server/internal/campaign"
	"campaign-server/internal/server"
	"campaign-server/internal/shared/config"

	"github.com/spf13/cobra"
)

func newPhaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase",
		Short: "Show the open phase and the global battle totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(st *server.State) error {
				status, err := st.Service.CurrentPhase()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), status)
			})
		},
	}
}

func newClosePhaseCmd() *cobra.Command {
	var subSector string
	cmd := &cobra.Command{
		Use:   "close-phase",
		Short: "Archive the open phase and start the next one",
		Long: `Archive the open phase of the current sub-sector. With --sub-sector the
campaign rotates to another sub-sector of the same sector, whose systems
become active.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(st *server.State) error {
				m, err := st.Service.ClosePhase(cmd.Context(), cliActor, subSector)
				if err != nil {
					return err
				}
				if !m.Persisted {
					return fmt.Errorf("phase closed but the state could not be saved")
				}
				return printJSON(cmd.OutOrStdout(), m.Result)
			})
		},
	}
	cmd.Flags().StringVar(&subSector, "sub-sector", "", "rotate to this sub-sector")
	return cmd
}

func newFactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factions [name]",
		Short: "Show faction activity, optionally for a single faction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = campaign.Capitalize(args[0])
			}
			return withState(cmd.Context(), func(st *server.State) error {
				reports, err := st.Service.FactionReport(name)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reports)
			})
		},
	}
}

func newSystemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "system <name>",
		Short: "Show a system's planets, rule and victory progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(st *server.State) error {
				report, err := st.Service.SystemReport(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newPlanetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "planet <name>",
		Short: "Show a planet's per-faction stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(st *server.State) error {
				report, err := st.Service.PlanetReport(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the persisted campaign document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd.Context(), func(st *server.State) error {
				doc, err := st.Store.Snapshot()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(doc, '\n'))
				return err
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a seed file and print the document it produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := campaign.LoadSeed(path)
			if err != nil {
				return err
			}
			doc, err := campaign.Encode(seed.Campaign())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(doc, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "seed YAML file (default: embedded layout)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		discordID string
		username  string
		admin     bool
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a Discord user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if discordID == "" || username == "" {
				return fmt.Errorf("--discord-id and --username are required")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
			if err != nil {
				return err
			}

			role := auth.RolePlayer
			if admin {
				role = auth.RoleAdmin
			}
			if ttl <= 0 {
				ttl = tokens.TTL()
			}
			token, err := tokens.GenerateWithTTL(auth.Identity{
				DiscordID: discordID,
				Username:  username,
				Role:      role,
			}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&discordID, "discord-id", "", "Discord user ID")
	cmd.Flags().StringVar(&username, "username", "", "display name carried by the token")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: JWT_EXPIRATION_HOURS)")
	return cmd
}

func newRevisionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "revisions",
		Short: "List the saved document revisions (postgres backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.State.Backend != config.StateBackendPostgres {
				return fmt.Errorf("revisions require STATE_BACKEND=postgres, got %s", cfg.State.Backend)
			}
			st, err := server.OpenRepository(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			revisions, err := st.Postgres.Revisions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), revisions)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of revisions to list")
	return cmd
}
