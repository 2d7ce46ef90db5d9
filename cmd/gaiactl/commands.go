package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sakif/gaia-lore/internal/seed"
	"github.com/sakif/gaia-lore/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Open runs every pending migration before returning.
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s schema is up to date\n", db.Dialect())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load lore from a YAML fixture",
	Long: `Load characters, factions, locations, events, concepts and glitches from a
YAML fixture. Without --file the built-in GAIA fixture is used.

A collection that already has rows is skipped unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		force, _ := cmd.Flags().GetBool("force")

		fixture, err := loadFixture(file)
		if err != nil {
			return err
		}

		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		rep, err := seed.Apply(cmd.Context(), seed.Services{
			Characters: service.NewCharacterService(db, logger),
			Factions:   service.NewFactionService(db, logger),
			Locations:  service.NewLocationService(db, logger),
			Events:     service.NewEventService(db, logger),
			Concepts:   service.NewConceptService(db, logger),
			Glitches:   service.NewGlitchService(db, logger),
		}, fixture, force, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		kinds := make([]string, 0, len(rep.Inserted))
		for kind := range rep.Inserted {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "✓ %-11s %d inserted\n", kind, rep.Inserted[kind])
		}
		for _, kind := range rep.Skipped {
			fmt.Fprintf(out, "- %-11s skipped (not empty, use --force)\n", kind)
		}
		return nil
	},
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}

var promoteCmd = &cobra.Command{
	Use:   "promote <openId>",
	Short: "Give an existing user the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		// only the user repository is needed to change a role
		users := service.NewAuthService(db, nil, nil, cfg.Auth.OwnerOpenID, logger)
		if err := users.Promote(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now an admin\n", args[0])
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg.Redacted())
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML fixture to load (default: built-in GAIA lore)")
	seedCmd.Flags().Bool("force", false, "Insert even into collections that already have rows")
}
