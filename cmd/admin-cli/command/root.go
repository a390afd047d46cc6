package command

// root.go defines the root command for the libraryhub admin CLI.
// Connection settings come from the same environment variables as the
// API server (DATABASE_URL and friends).

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"libraryhub/database"
	"libraryhub/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "libraryhub-admin",
	Short: "libraryhub-admin - administrative tasks for the LibraryHub API",
	Long: `libraryhub-admin runs one-off administrative tasks against the LibraryHub
database. Available tasks:
- seed the database with the sample catalog and default admin account
- create additional admin accounts

Use "libraryhub-admin command -h" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads configuration and opens a gorm connection for a
// subcommand run.
func openDatabase() (*gorm.DB, *config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}

	return db, cfg, logger, nil
}
