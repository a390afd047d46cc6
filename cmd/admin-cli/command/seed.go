package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libraryhub/internal/seed"
)

// seedCmd populates the database with the default admin account and the
// sample catalog. Safe to run more than once.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the sample catalog and default admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, logger, err := openDatabase()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := seed.Run(ctx, db, cfg, logger); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}

		fmt.Println("✓ Database seeded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
