package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

// RepositoryStore mock
type RepositoryStore struct {
	mock.Mock
}

func (m *RepositoryStore) AllRepositories(ctx context.Context) ([]entities.Repository, error) {
	args := m.Called(ctx)
	repos, _ := args.Get(0).([]entities.Repository)
	return repos, args.Error(1)
}

func (m *RepositoryStore) ApplyChanges(ctx context.Context, changes entities.ChangeSet) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func (m *RepositoryStore) ListRepositories(ctx context.Context, query db.ListQuery) ([]entities.Repository, db.PagingInfo, error) {
	args := m.Called(ctx, query)
	repos, _ := args.Get(0).([]entities.Repository)
	return repos, args.Get(1).(db.PagingInfo), args.Error(2)
}

func (m *RepositoryStore) RepositoryByID(ctx context.Context, id int64) (*entities.Repository, error) {
	args := m.Called(ctx, id)
	repo, _ := args.Get(0).(*entities.Repository)
	return repo, args.Error(1)
}
