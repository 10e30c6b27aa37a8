package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/casapps/casrecipes/src/internal/config"
	"github.com/casapps/casrecipes/src/internal/database"
	"github.com/casapps/casrecipes/src/pkg/utils"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "casrecipes",
		Short: "CasRecipes - self-hosted recipe sharing server",
		Long: `CasRecipes is a self-hosted recipe sharing backend. Users publish
recipes with tags and measured ingredients, follow authors, mark
favorites and build an aggregated shopping list from their cart.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newAdminCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CasRecipes v%s\n", Version)
		},
	}
}

// openDatabase loads configuration, connects and migrates. Shared by every
// subcommand that touches the database.
func openDatabase() (*viper.Viper, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.SetDefault(utils.NewLogger())

	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.MigrateDB(db, cfg.GetString("database.type")); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cfg, db, nil
}
