package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/simp-lee/myproject/internal/app"
	"github.com/simp-lee/myproject/internal/config"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "server",
		Short: "Library, blog and shop tutorial server with an admin site",
		Long: `Runs the HTTP server with its JSON API, HTML pages and admin site.

Subcommands:
  serve            - Start the HTTP server (default)
  migrate          - Apply or inspect the database schema
  createsuperuser  - Create a staff account for the admin site`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newCreateSuperuserCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	return a.Run()
}

// openDB loads the config and opens the database for the maintenance
// commands. The caller closes the returned func.
func openDB(configPath string) (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := config.SetupDatabase(&cfg.Database, slog.Default())
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cfg, db, closeDB, nil
}
