package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simp-lee/myproject/internal/migration"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the database schema",
		Long: `Keep the database schema in sync with the models.

Subcommands:
  up      - Apply pending migrations
  status  - Show migration status`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, closeDB, err := openDB(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := migration.Run(cmd.Context(), db, cfg.Database.Driver); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var jsonOutput bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long: `Show the schema version and any tables that do not exist yet.

Examples:
  server migrate status          # Human readable table
  server migrate status --json   # Output in JSON format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, closeDB, err := openDB(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			st, err := migration.GetStatus(cmd.Context(), db, cfg.Database.Driver)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "DRIVER\t%s\n", st.Driver)
			fmt.Fprintf(w, "VERSION\t%d\n", st.Version)
			fmt.Fprintf(w, "DIRTY\t%t\n", st.Dirty)
			if len(st.Missing) == 0 {
				fmt.Fprintln(w, "MISSING\tnone")
			} else {
				fmt.Fprintf(w, "MISSING\t%s\n", strings.Join(st.Missing, ", "))
			}
			return w.Flush()
		},
	}
	status.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(up, status)
	return cmd
}
