package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ajharbinger/profmatch-api/internal/database"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync()

		if err := database.RunMigrations(url); err != nil {
			return err
		}
		version, dirty, err := database.MigrationVersion(url)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "version", version, "dirty", dirty)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		steps, _ := cmd.Flags().GetInt("steps")
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			prompt := promptui.Select{
				Label: fmt.Sprintf("Roll back %d migration(s)? Data in dropped tables is lost", steps),
				Items: []string{PromptNo, PromptYes},
			}
			_, answer, err := prompt.Run()
			if err != nil {
				return err
			}
			if answer != PromptYes {
				return nil
			}
		}

		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync()

		if err := database.RollbackMigrations(url, steps); err != nil {
			return err
		}
		log.Info("migrations rolled back", "steps", steps)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		version, dirty, err := database.MigrationVersion(url)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	migrateDownCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}
