package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/casapps/casrecipes/src/internal/email"
	"github.com/casapps/casrecipes/src/internal/services"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	var username, userEmail string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || userEmail == "" {
				return fmt.Errorf("--username and --email are required")
			}

			password, err := promptPassword()
			if err != nil {
				return err
			}

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}

			users := services.NewUserService(db, cfg, email.NewNotifier(cfg))
			user, err := users.CreateUser(services.CreateUserInput{
				Username: username,
				Email:    userEmail,
				Password: password,
			})
			if err != nil {
				return err
			}

			user.IsAdmin = true
			if err := db.Save(user).Error; err != nil {
				return fmt.Errorf("failed to grant admin: %w", err)
			}

			fmt.Printf("Admin account %q created\n", user.Username)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "admin username")
	create.Flags().StringVar(&userEmail, "email", "", "admin email address")

	cmd.AddCommand(create)
	return cmd
}

// promptPassword reads the password twice without echo
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if strings.TrimSpace(string(first)) != strings.TrimSpace(string(second)) {
		return "", fmt.Errorf("passwords do not match")
	}
	return strings.TrimSpace(string(first)), nil
}
