package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

const syncKey = "sync"

// StarredFetcher lists every repository starred by the configured user.
type StarredFetcher interface {
	FetchAllStarred(ctx context.Context) ([]entities.StarredRepository, error)
}

// Metrics receives run-level counters.
type Metrics interface {
	ReadmeRecorder
	RunStarted()
	RunSucceeded()
	RunFailed()
	ObserveRunDuration(d time.Duration)
}

// Report summarizes one synchronization run.
type Report struct {
	RunID     string
	Skipped   bool
	Fetched   int
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Readmes   int
	Duration  time.Duration
	Err       error
}

// Syncer reconciles the local store with the starred list of one user.
type Syncer struct {
	enabled  bool
	starred  StarredFetcher
	store    db.RepositoryStore
	enricher *Enricher
	metrics  Metrics
	clock    clock.PassiveClock
	log      logrus.FieldLogger

	group singleflight.Group
}

// NewSyncer builds a Syncer. When enabled is false every run is skipped,
// which is how missing credentials are handled.
func NewSyncer(enabled bool, starred StarredFetcher, store db.RepositoryStore, enricher *Enricher, metrics Metrics, clk clock.PassiveClock, log logrus.FieldLogger) *Syncer {
	return &Syncer{
		enabled:  enabled,
		starred:  starred,
		store:    store,
		enricher: enricher,
		metrics:  metrics,
		clock:    clk,
		log:      log,
	}
}

// SyncOnce runs a full fetch, diff, enrich and write cycle. It never returns
// an error to the caller: failures are logged, counted and reported in
// Report.Err. A call made while a run is in flight waits for and shares that
// run's report.
func (s *Syncer) SyncOnce(ctx context.Context) Report {
	if !s.enabled {
		s.log.Debug("GitHub token or username not configured, skipping synchronization")
		return Report{Skipped: true}
	}

	v, _, shared := s.group.Do(syncKey, func() (interface{}, error) {
		return s.run(ctx), nil
	})
	if shared {
		s.log.Debug("Joined synchronization already in progress")
	}

	return v.(Report)
}

func (s *Syncer) run(ctx context.Context) (report Report) {
	report.RunID = uuid.NewString()
	log := s.log.WithField("run_id", report.RunID)

	s.metrics.RunStarted()
	start := s.clock.Now()
	log.Info("Starting synchronization of starred repositories")

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("synchronization panicked: %v", r)
		}

		report.Duration = s.clock.Since(start)
		s.metrics.ObserveRunDuration(report.Duration)

		if report.Err != nil {
			s.metrics.RunFailed()
			log.WithError(report.Err).Error("Synchronization failed")
			return
		}

		s.metrics.RunSucceeded()
		log.WithFields(logrus.Fields{
			"created":   report.Created,
			"updated":   report.Updated,
			"deleted":   report.Deleted,
			"unchanged": report.Unchanged,
			"readmes":   report.Readmes,
			"duration":  report.Duration.String(),
		}).Info("Synchronization completed successfully")
	}()

	report.Err = s.sync(ctx, log, &report)
	return report
}

func (s *Syncer) sync(ctx context.Context, log logrus.FieldLogger, report *Report) error {
	log.Info("Step 1/4: fetching starred repositories")
	remote, err := s.starred.FetchAllStarred(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch starred repositories: %w", err)
	}
	report.Fetched = len(remote)

	log.Info("Step 2/4: loading stored repositories")
	persisted, err := s.store.AllRepositories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored repositories: %w", err)
	}

	classification := Diff(remote, persisted)
	log.WithFields(logrus.Fields{
		"new":     len(classification.Create),
		"updated": len(classification.Update),
		"removed": len(classification.Delete),
	}).Info("Computed changes")

	log.Info("Step 3/4: fetching READMEs")
	candidates := s.enricher.Candidates(classification, indexByID(persisted))
	readmes, err := s.enricher.Enrich(ctx, candidates)
	if err != nil {
		return err
	}

	log.Info("Step 4/4: writing changes")
	changes := buildChangeSet(classification, readmes, s.clock.Now())
	if changes.Empty() {
		log.Info("Store already up to date")
	} else if err := s.store.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}

	report.Created = len(changes.Create)
	report.Updated = len(changes.Update)
	report.Deleted = len(changes.Delete)
	report.Unchanged = len(classification.Unchanged)
	report.Readmes = len(readmes)

	return nil
}

// buildChangeSet turns a classification and the fetched READMEs into the
// writes for one transaction. Updates carry README fields only when the
// README was fetched this run; otherwise the cached copy is left alone.
func buildChangeSet(c entities.Classification, readmes map[int64]*string, fetchedAt time.Time) entities.ChangeSet {
	var changes entities.ChangeSet

	for _, remote := range c.Create {
		repo := remote.ToRepository()
		at := fetchedAt
		repo.ReadmeContent = readmes[remote.ID]
		repo.ReadmeFetchedAt = &at
		changes.Create = append(changes.Create, repo)
	}

	for _, remote := range c.Update {
		update := entities.RepositoryUpdate{Repository: remote.ToRepository()}
		if content, ok := readmes[remote.ID]; ok {
			at := fetchedAt
			update.ReadmeContent = content
			update.ReadmeFetchedAt = &at
			update.ReadmeRefreshed = true
		}
		changes.Update = append(changes.Update, update)
	}

	changes.Delete = append(changes.Delete, c.Delete...)

	return changes
}
