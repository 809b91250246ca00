package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func starred(id int64, fullName string, pushedAt time.Time) entities.StarredRepository {
	return entities.StarredRepository{
		ID:        id,
		Name:      fullName[len("octocat/"):],
		FullName:  fullName,
		URL:       "https://github.com/" + fullName,
		Stars:     int(id) * 10,
		CreatedAt: epoch.Add(-365 * 24 * time.Hour),
		PushedAt:  pushedAt,
		StarredAt: epoch.Add(-time.Duration(id) * time.Hour),
	}
}

func stored(id int64, fullName string, pushedAt time.Time, readmeFetchedAt *time.Time) entities.Repository {
	repo := starred(id, fullName, pushedAt).ToRepository()
	repo.ReadmeFetchedAt = readmeFetchedAt
	return repo
}

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

// MockStarredFetcher mock
type MockStarredFetcher struct {
	mock.Mock
}

func (m *MockStarredFetcher) FetchAllStarred(ctx context.Context) ([]entities.StarredRepository, error) {
	args := m.Called(ctx)
	repos, _ := args.Get(0).([]entities.StarredRepository)
	return repos, args.Error(1)
}

// MockReadmeFetcher mock
type MockReadmeFetcher struct {
	mock.Mock
}

func (m *MockReadmeFetcher) FetchReadme(ctx context.Context, fullName string) (*string, error) {
	args := m.Called(ctx, fullName)
	content, _ := args.Get(0).(*string)
	return content, args.Error(1)
}

type fakeMetrics struct {
	mu        sync.Mutex
	started   int
	succeeded int
	failed    int
	readmes   int
	durations []time.Duration
}

func (f *fakeMetrics) RunStarted()   { f.mu.Lock(); f.started++; f.mu.Unlock() }
func (f *fakeMetrics) RunSucceeded() { f.mu.Lock(); f.succeeded++; f.mu.Unlock() }
func (f *fakeMetrics) RunFailed()    { f.mu.Lock(); f.failed++; f.mu.Unlock() }

func (f *fakeMetrics) ReadmesFetched(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readmes += n
}

func (f *fakeMetrics) ObserveRunDuration(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations = append(f.durations, d)
}

func ptr[T any](v T) *T {
	return &v
}
