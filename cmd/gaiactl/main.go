// Command gaiactl runs operator tasks against the GAIA database: schema
// migrations, lore seeding and admin promotion.
//
// It reads the same configuration as the server (config.yaml, GAIA_* and
// DATABASE_URL), so `gaiactl config` shows exactly what the server will use.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/gaia-lore/internal/config"
	"github.com/sakif/gaia-lore/internal/repository/sqldb"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "gaiactl",
	Short:         "GAIA lore operator tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd, seedCmd, promoteCmd, configCmd)
}

// openDatabase connects to database.url. Unlike the server, the CLI has no
// offline mode: every command needs a real database.
func openDatabase(ctx context.Context) (*sqldb.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is not set (DATABASE_URL or GAIA_DATABASE_URL)")
	}
	return sqldb.Open(ctx, cfg.Database.URL, sqldb.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnMaxLife:  cfg.Database.ConnMaxLifetime,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
