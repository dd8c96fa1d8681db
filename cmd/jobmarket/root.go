package main

import (
	"context"
	"fmt"

	"github.com/jonathan/jobmarket/internal/config"
	"github.com/jonathan/jobmarket/internal/db"
	"github.com/jonathan/jobmarket/internal/observability"
	"github.com/jonathan/jobmarket/internal/skills"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobmarket",
	Short: "Job posting ingestion",
	Long: "jobmarket normalizes raw job postings from a file or the JSearch API and stores them " +
		"with their companies, locations and skills in PostgreSQL or SQLite.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string

	// Set by loadConfig before any command runs.
	cfg    *config.Config
	logger *logrus.Logger
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to YAML or JSON config file")
	flags.String("database-url", "", "Database URL (postgres://, postgresql:// or sqlite://<path>)")
	flags.String("skills-file", "", "YAML skill vocabulary replacing the built-in one")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.BoolP("verbose", "v", false, "Print boxed summaries")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	log, err := observability.NewLogger(c.LogLevel, c.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, logger = c, log
	return nil
}

func openStore(ctx context.Context) (db.Store, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func loadVocabulary() (*skills.Vocabulary, error) {
	if cfg.SkillsFile == "" {
		return skills.Default(), nil
	}
	return skills.LoadFile(cfg.SkillsFile)
}
