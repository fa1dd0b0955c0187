package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/psrec/psrec/internal/config"
	"github.com/psrec/psrec/internal/database"
	"github.com/psrec/psrec/internal/logger"
	"github.com/psrec/psrec/internal/problem"
	"github.com/psrec/psrec/internal/tag"
	"github.com/psrec/psrec/internal/user"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "psrec",
	Short: "Baekjoon problem recommendations from solved.ac data",
	Long: `psrec serves problem recommendations built by collaborative filtering
over solved.ac solve histories, and crawls solved.ac to keep that data fresh.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
}

// setup loads and validates the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

type stores struct {
	db       *sql.DB
	users    user.Repository
	tags     tag.Repository
	problems problem.Repository
}

func (s stores) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// openStores connects to Postgres and migrates it when a database is
// configured. Otherwise it seeds in-memory repositories with sample data.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger, opts database.Options) (stores, error) {
	if !cfg.UsesDatabase() {
		log.Warn("database_url not set, using in-memory storage with sample data")
		seed, err := user.DevSeed()
		if err != nil {
			return stores{}, fmt.Errorf("seeding users: %w", err)
		}
		return stores{
			users:    user.NewInMemoryRepository(seed),
			tags:     tag.NewInMemoryRepository(tag.DefaultTags),
			problems: problem.NewInMemoryRepository(problem.SampleData(1)),
		}, nil
	}

	db, err := database.Connect(ctx, log, cfg.DatabaseURL, opts)
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, fmt.Errorf("migrating database: %w", err)
	}
	return stores{
		db:       db,
		users:    user.NewPostgresRepository(db),
		tags:     tag.NewPostgresRepository(db),
		problems: problem.NewPostgresRepository(db),
	}, nil
}
