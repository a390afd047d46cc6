package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraryhub/internal/seed"
)

// createAdminCmd creates an admin account. The password is read from the
// terminal so it never lands in shell history.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		email = strings.TrimSpace(email)
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		password, err := promptPassword()
		if err != nil {
			return err
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		db, _, logger, err := openDatabase()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := seed.CreateAdmin(ctx, db, email, password, logger); err != nil {
			return fmt.Errorf("could not create admin: %w", err)
		}

		fmt.Printf("✓ Admin account ready: %s\n", email)
		return nil
	},
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}

	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}

func init() {
	createAdminCmd.Flags().String("email", "", "email address of the new admin")
	rootCmd.AddCommand(createAdminCmd)
}
