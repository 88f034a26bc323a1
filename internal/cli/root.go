// Package cli implements the apexctl command tree. Commands talk to the
// platform API through the shared client, cache reads through the query
// layer, and persist login state in the local store.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anonymeye/apex-platform/internal/apiclient"
	"github.com/anonymeye/apex-platform/internal/config"
	"github.com/anonymeye/apex-platform/internal/query"
	"github.com/anonymeye/apex-platform/internal/review"
	"github.com/anonymeye/apex-platform/internal/state"
)

// App carries the wired dependencies every command needs.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	State  *state.Store
	API    *apiclient.Client
	Cache  *query.Cache
	Flow   *review.Flow

	// JSON switches listings from tables to machine-readable output.
	JSON bool
}

type globalFlags struct {
	configPath string
	verbose    bool
	json       bool
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *App {
	app, _ := cmd.Context().Value(appKey{}).(*App)
	return app
}

// NewRootCmd builds the apexctl command tree.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "apexctl",
		Short: "Admin console for the Apex agent platform",
		Long: `apexctl manages the configuration of an Apex deployment:
provider connections, model references, agents, tools, knowledge
bases, and LLM-judge evaluation runs with human review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}

			configPath := flags.configPath
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level := parseLevel(cfg.LogLevel)
			if flags.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			store, err := state.Open(cfg.StatePath)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}

			client := apiclient.New(apiclient.Options{
				BaseURL:           cfg.APIBaseURL,
				Version:           cfg.APIVersion,
				Timeout:           cfg.Timeout,
				RequestsPerMinute: cfg.RequestsPerMinute,
				Burst:             cfg.Burst,
				Session:           store,
				Logger:            logger,
			})
			cache := query.New(cfg.CacheTTL, logger)

			app := &App{
				Config: cfg,
				Logger: logger,
				State:  store,
				API:    client,
				Cache:  cache,
				Flow:   review.NewFlow(client, cache, logger),
				JSON:   flags.json,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app := appFrom(cmd); app != nil {
				return app.State.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.apex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "output JSON instead of tables")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newOrgCmd())
	rootCmd.AddCommand(newConnectionCmd())
	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newAgentCmd())
	rootCmd.AddCommand(newToolCmd())
	rootCmd.AddCommand(newKBCmd())
	rootCmd.AddCommand(newJudgeCmd())
	rootCmd.AddCommand(newConversationCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and maps errors to an exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
