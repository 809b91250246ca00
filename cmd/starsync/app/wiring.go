package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"k8s.io/utils/clock"

	"github.com/just-nibble/starsync/internal/adapters/api"
	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/adapters/metrics"
	"github.com/just-nibble/starsync/internal/adapters/storage"
	"github.com/just-nibble/starsync/internal/core/service"
	"github.com/just-nibble/starsync/internal/log"
	"github.com/just-nibble/starsync/pkg/config"
)

// application is the object graph shared by the serve and sync commands.
type application struct {
	cfg      config.Config
	log      *logrus.Logger
	clock    clock.Clock
	db       *gorm.DB
	registry *prometheus.Registry
	store    *db.GormRepositoryStore
	syncer   *service.Syncer
}

func newApplication(ctx context.Context, cmd *cobra.Command, v *viper.Viper) (*application, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(cfg.LogFormat, cfg.LogLevel)
	logConfig(logger, cfg)

	clk := clock.RealClock{}
	registry := metrics.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	// Initialize the GitHub client
	transport := api.NewRateLimitTransport(nil, clk, recorder, logger.WithField("component", "transport"))
	transport.MaxRetries = cfg.RateLimitMaxRetries
	github, err := api.NewGitHubClient(api.NewHTTPClient(cfg.GitHubToken, transport), string(cfg.GitHubUsername), cfg.GitHubAPIURL)
	if err != nil {
		return nil, err
	}

	// Initialize the database
	database, err := storage.InitDB(ctx, cfg.Database, logger.WithField("component", "storage"))
	if err != nil {
		return nil, err
	}
	store := db.NewGormRepositoryStore(database)

	syncLog := logger.WithField("component", "sync")
	enricher := service.NewEnricher(github, recorder, clk, cfg.ReadmeFreshness, syncLog)
	syncer := service.NewSyncer(cfg.HasCredentials(), github, store, enricher, recorder, clk, syncLog)

	return &application{
		cfg:      cfg,
		log:      logger,
		clock:    clk,
		db:       database,
		registry: registry,
		store:    store,
		syncer:   syncer,
	}, nil
}

func (a *application) Close() {
	if err := storage.Close(a.db); err != nil {
		a.log.WithError(err).Error("Failed to close database")
	}
}

// logConfig reports the resolved settings without leaking secrets.
func logConfig(logger logrus.FieldLogger, cfg config.Config) {
	logger.WithFields(logrus.Fields{
		"github_token":           presence(cfg.GitHubToken),
		"github_username":        cfg.GitHubUsername,
		"github_api_url":         cfg.GitHubAPIURL,
		"sync_on_boot":           cfg.SyncOnBoot,
		"sync_cron":              cfg.SyncCronEnabled,
		"cron_schedule":          cfg.CronSchedule,
		"readme_freshness":       cfg.ReadmeFreshness.String(),
		"rate_limit_max_retries": cfg.RateLimitMaxRetries,
		"db_driver":              cfg.Database.Driver,
		"database_url":           presence(cfg.Database.URL),
		"http_address":           cfg.HTTPAddress,
	}).Info("Configuration loaded")

	if !cfg.HasCredentials() {
		logger.WithError(config.ErrMissingCredentials).Warn("Synchronization is disabled until credentials are provided")
	}
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}
