// Package cli implements the inkwell command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/msomdec/inkwell/internal/config"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/repository"
)

var (
	cfgFile string
	cfg     *config.Config
	flags   config.Flags
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "A small personal blogging platform",
	Long: `Inkwell serves a blog with public reading, signed-in authoring and an
admin dashboard. Posts are stored in SQLite, PostgreSQL or MongoDB.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Apply(&flags)
		setupLogging(cfg)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inkwell %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "inkwell.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.Port, "port", "", "HTTP listen port")
	rootCmd.PersistentFlags().StringVar(&flags.DatabaseDriver, "db-driver", "", "database driver: sqlite, postgres or mongo")
	rootCmd.PersistentFlags().StringVar(&flags.DatabaseURL, "db-url", "", "database path or connection URL")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}

// setupLogging installs a text handler on stdout and a JSON handler on
// stderr as the default logger.
func setupLogging(cfg *config.Config) {
	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
}

// openStore connects to the configured backend and applies its schema.
func openStore(ctx context.Context) (domain.Database, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
