package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajharbinger/profmatch-api/internal/database"
	"github.com/ajharbinger/profmatch-api/internal/logger"
)

const app = "profmatch-admin"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "profmatch-admin manages the profmatch database: migrations, secretaries and reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"database-url": "DATABASE_URL",
		"log-level":    "LOG_LEVEL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is profmatch-admin.yaml in current directory, optional)")
	rootCmd.PersistentFlags().String("database-url", "", "postgres connection string (env DATABASE_URL)")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatal(err)
		}
	}
}

func databaseURL() (string, error) {
	url := viper.GetString("database-url")
	if url == "" {
		return "", fmt.Errorf("database url is not set: use --database-url or DATABASE_URL")
	}
	return url, nil
}

func newLogger() (logger.Logger, error) {
	return logger.New(logger.Options{
		Level: viper.GetString("log-level"),
		JSON:  viper.GetBool("json"),
	})
}

func openDB() (*database.DB, error) {
	url, err := databaseURL()
	if err != nil {
		return nil, err
	}
	return database.New(url)
}
