package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/just-nibble/starsync/internal/adapters/api"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

// ReadmeFetcher returns the decoded README of a repository, or
// api.ErrReadmeNotFound when it has none.
type ReadmeFetcher interface {
	FetchReadme(ctx context.Context, fullName string) (*string, error)
}

// ReadmeRecorder counts README fetches.
type ReadmeRecorder interface {
	ReadmesFetched(n int)
}

// Enricher fetches READMEs for new repositories and for updated ones whose
// cached copy is missing or stale.
type Enricher struct {
	readmes   ReadmeFetcher
	recorder  ReadmeRecorder
	clock     clock.PassiveClock
	freshness time.Duration
	log       logrus.FieldLogger
}

func NewEnricher(readmes ReadmeFetcher, recorder ReadmeRecorder, clk clock.PassiveClock, freshness time.Duration, log logrus.FieldLogger) *Enricher {
	return &Enricher{
		readmes:   readmes,
		recorder:  recorder,
		clock:     clk,
		freshness: freshness,
		log:       log,
	}
}

// Candidates selects the repositories whose README must be fetched this run:
// every create, and every update without a cached README fetched within the
// freshness window. Each id appears once.
func (e *Enricher) Candidates(c entities.Classification, stored map[int64]entities.Repository) []entities.StarredRepository {
	now := e.clock.Now()

	candidates := make([]entities.StarredRepository, 0, len(c.Create)+len(c.Update))
	candidates = append(candidates, c.Create...)

	for _, repo := range c.Update {
		existing, ok := stored[repo.ID]
		if !ok || existing.ReadmeStale(now, e.freshness) {
			candidates = append(candidates, repo)
		}
	}

	return dedupeByID(candidates)
}

// Enrich fetches READMEs one at a time. A failed fetch is logged and recorded
// as nil content; only a cancelled context stops the stage.
func (e *Enricher) Enrich(ctx context.Context, candidates []entities.StarredRepository) (map[int64]*string, error) {
	candidates = dedupeByID(candidates)
	results := make(map[int64]*string, len(candidates))

	for _, repo := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("readme enrichment interrupted: %w", err)
		}

		content, err := e.readmes.FetchReadme(ctx, repo.FullName)
		switch {
		case errors.Is(err, api.ErrReadmeNotFound):
			e.log.WithField("repo", repo.FullName).Warn("README not found")
		case err != nil:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("readme enrichment interrupted: %w", ctx.Err())
			}
			e.log.WithField("repo", repo.FullName).WithError(err).Error("Error fetching README")
			content = nil
		}

		results[repo.ID] = content
	}

	e.recorder.ReadmesFetched(len(results))
	return results, nil
}
