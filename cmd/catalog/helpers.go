package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/autoparts-catalog/internal/catalog"
	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/config"
	"github.com/Veraticus/autoparts-catalog/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bindFlags binds command flags to config keys. Subcommands share keys
// such as "mapping", so binding happens when the command runs rather than
// when it is built.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig decodes the global viper state into a validated config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("configuration is invalid", err)
	}
	return cfg, nil
}

// initStorage opens and migrates the run history database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadAliases merges the built-in alias table with the configured mapping file.
func loadAliases(cfg *config.Config) (catalog.AliasMap, error) {
	defaults := catalog.DefaultAliases()
	if cfg.Mapping == "" {
		return defaults, nil
	}

	user, err := catalog.LoadAliasFile(cfg.Mapping)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not use mapping file %s", cfg.Mapping), err)
	}
	return catalog.MergeAliases(defaults, user), nil
}
