package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajharbinger/profmatch-api/internal/repository"
	"github.com/ajharbinger/profmatch-api/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load subjects, factors, professions and specialities from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening seed file: %w", err)
		}
		defer f.Close()

		catalog, err := seed.Load(f)
		if err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		res, err := seed.Apply(ctx, repository.NewRepositories(db.DB), catalog)
		if err != nil {
			return err
		}

		log.Info("seed applied",
			"file", path,
			"subjects", res.Subjects,
			"factors", res.Factors,
			"professions", res.Professions,
			"specialities", res.Specialities,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("file", "f", "seed.yaml", "seed file")
}
