package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simp-lee/myproject/internal/module/auth"
)

// passwordEnv is read when --password is omitted so the secret stays out of
// shell history.
const passwordEnv = "APP_SUPERUSER_PASSWORD"

func newCreateSuperuserCmd(configPath *string) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account for the admin site",
		Long: `Create an active staff account that can log in to /admin.

Examples:
  server createsuperuser --email admin@example.com --password 's3cret-pass'
  APP_SUPERUSER_PASSWORD='s3cret-pass' server createsuperuser --email admin@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return errors.New("password is required (use --password or " + passwordEnv + ")")
			}

			_, db, closeDB, err := openDB(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			// Creating accounts does not issue tokens.
			svc := auth.NewService(nil, auth.NewStaffRepository(db))
			staff, err := svc.CreateStaff(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created (id %d)\n", staff.Email, staff.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "login password, 8 to 72 characters")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
