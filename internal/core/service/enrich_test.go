package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/just-nibble/starsync/internal/adapters/api"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

func TestEnricherCandidates(t *testing.T) {
	clk := testingclock.NewFakePassiveClock(epoch)
	logger, _ := newTestLogger()
	e := NewEnricher(&MockReadmeFetcher{}, &fakeMetrics{}, clk, 24*time.Hour, logger)

	pushed := epoch.Add(-time.Hour)
	persisted := []entities.Repository{
		stored(2, "octocat/never", pushed.Add(-time.Hour), nil),
		stored(3, "octocat/stale", pushed.Add(-time.Hour), ptr(epoch.Add(-25*time.Hour))),
		stored(4, "octocat/fresh", pushed.Add(-time.Hour), ptr(epoch.Add(-time.Hour))),
		stored(5, "octocat/boundary", pushed.Add(-time.Hour), ptr(epoch.Add(-24*time.Hour))),
	}

	c := entities.Classification{
		Create: []entities.StarredRepository{starred(1, "octocat/new", pushed)},
		Update: []entities.StarredRepository{
			starred(2, "octocat/never", pushed),
			starred(3, "octocat/stale", pushed),
			starred(4, "octocat/fresh", pushed),
			starred(5, "octocat/boundary", pushed),
		},
	}

	candidates := e.Candidates(c, indexByID(persisted))

	assert.Equal(t, []int64{1, 2, 3}, ids(candidates))
}

func TestEnricherEnrich(t *testing.T) {
	ctx := context.Background()
	clk := testingclock.NewFakePassiveClock(epoch)
	logger, hook := newTestLogger()
	metrics := &fakeMetrics{}

	readmes := &MockReadmeFetcher{}
	readmes.On("FetchReadme", mock.Anything, "octocat/one").Return(ptr("# one"), nil).Once()
	readmes.On("FetchReadme", mock.Anything, "octocat/missing").Return(nil, api.ErrReadmeNotFound).Once()
	readmes.On("FetchReadme", mock.Anything, "octocat/broken").Return(nil, errors.New("boom")).Once()

	e := NewEnricher(readmes, metrics, clk, 24*time.Hour, logger)

	results, err := e.Enrich(ctx, []entities.StarredRepository{
		starred(1, "octocat/one", epoch),
		starred(2, "octocat/missing", epoch),
		starred(3, "octocat/broken", epoch),
		starred(1, "octocat/one", epoch),
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "# one", *results[1])
	assert.Contains(t, results, int64(2))
	assert.Nil(t, results[2])
	assert.Contains(t, results, int64(3))
	assert.Nil(t, results[3])
	assert.Equal(t, 3, metrics.readmes)
	readmes.AssertExpectations(t)

	var warned, errored bool
	for _, entry := range hook.AllEntries() {
		switch {
		case entry.Level == logrus.WarnLevel && entry.Data["repo"] == "octocat/missing":
			warned = true
		case entry.Level == logrus.ErrorLevel && entry.Data["repo"] == "octocat/broken":
			errored = true
		}
	}
	assert.True(t, warned, "missing README should be logged as a warning")
	assert.True(t, errored, "failed README fetch should be logged as an error")
}

func TestEnricherStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := newTestLogger()
	readmes := &MockReadmeFetcher{}
	e := NewEnricher(readmes, &fakeMetrics{}, testingclock.NewFakePassiveClock(epoch), 24*time.Hour, logger)

	_, err := e.Enrich(ctx, []entities.StarredRepository{starred(1, "octocat/one", epoch)})

	require.ErrorIs(t, err, context.Canceled)
	readmes.AssertNotCalled(t, "FetchReadme", mock.Anything, mock.Anything)
}
