package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// runtimeEnv supplies configuration and the database to every command.
type runtimeEnv struct {
	loadConfig func() (*config.Config, error)
	openDB     func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error)
}

func defaultEnv() runtimeEnv {
	return runtimeEnv{
		loadConfig: config.Load,
		openDB:     setupAppDatabase,
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithEnv(defaultEnv())
}

func newRootCmdWithEnv(env runtimeEnv) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "Collaborative task board API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(env),
		newMigrateCmd(env),
		newUsersCmd(env),
		newTokenCmd(env),
	)
	return rootCmd
}

// bootstrap loads configuration and sets up logging written to out.
func (env runtimeEnv) bootstrap(out io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cfg.Server, out)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

// withDatabase runs fn with an open database and closes it afterwards.
// Operator commands log to stderr so their stdout stays machine readable.
func (env runtimeEnv) withDatabase(
	cmd *cobra.Command,
	fn func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) error,
) error {
	cfg, log, err := env.bootstrap(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := env.openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database connection", slog.String("error", closeErr.Error()))
		}
	}()

	return fn(ctx, cfg, log, db)
}

func newServeCmd(env runtimeEnv) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := env.bootstrap(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := env.openDB(ctx, cfg, log)
			if err != nil {
				return err
			}

			if migrate {
				if err := postgres.Migrate(ctx, db, "up", log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}

			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(env runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(postgres.MigrationCommands, "|") + ">",
		Short:     "Manage the database schema",
		ValidArgs: postgres.MigrationCommands,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withDatabase(cmd, func(ctx context.Context, _ *config.Config, log *slog.Logger, db *sql.DB) error {
				return postgres.Migrate(ctx, db, args[0], log)
			})
		},
	}
}

func newUsersCmd(env runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Provision the users tasks can be assigned to",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username>",
			Short: "Create a user and print its ID",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := domain.NewUser(args[0])
				if err != nil {
					return fmt.Errorf("invalid username: %w", err)
				}
				return env.withDatabase(cmd, func(ctx context.Context, _ *config.Config, log *slog.Logger, db *sql.DB) error {
					if err := postgres.NewPostgresUserStore(db, log).Create(ctx, user); err != nil {
						return fmt.Errorf("failed to create user %q: %w", user.Username, err)
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), user.ID)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List users in assignment order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return env.withDatabase(cmd, func(ctx context.Context, _ *config.Config, log *slog.Logger, db *sql.DB) error {
					users, err := postgres.NewPostgresUserStore(db, log).List(ctx)
					if err != nil {
						return fmt.Errorf("failed to list users: %w", err)
					}

					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tUSERNAME\tCREATED")
					for _, u := range users {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.Format(time.RFC3339))
					}
					return tw.Flush()
				})
			},
		},
	)
	return cmd
}

func newTokenCmd(env runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue access tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "issue <user-id>",
		Short: "Print an access token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", args[0], err)
			}
			return env.withDatabase(cmd, func(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) error {
				if _, err := postgres.NewPostgresUserStore(db, log).GetByID(ctx, userID); err != nil {
					return fmt.Errorf("failed to load user %s: %w", userID, err)
				}

				jwtService, err := auth.NewJWTService(cfg.Auth)
				if err != nil {
					return err
				}
				token, err := jwtService.GenerateToken(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to generate token: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
				return err
			})
		},
	})
	return cmd
}
