package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

// ErrNoRecordFound is returned when a lookup by id matches nothing.
var ErrNoRecordFound = errors.New("no record found")

// createBatchSize caps the rows per INSERT statement.
const createBatchSize = 100

// metadataColumns are overwritten on every update; README columns only when
// the README was fetched again.
var (
	metadataColumns = []string{
		"name", "full_name", "description", "url", "language", "stars",
		"repo_created_at", "repo_pushed_at", "repo_starred_at",
	}
	readmeColumns = []string{"readme_content", "readme_fetched_at"}
)

// RepositoryStore defines an interface for database operations
type RepositoryStore interface {
	AllRepositories(ctx context.Context) ([]entities.Repository, error)
	ApplyChanges(ctx context.Context, changes entities.ChangeSet) error
	ListRepositories(ctx context.Context, query ListQuery) ([]entities.Repository, PagingInfo, error)
	RepositoryByID(ctx context.Context, id int64) (*entities.Repository, error)
}

// GormRepositoryStore is a GORM-based implementation of RepositoryStore
type GormRepositoryStore struct {
	db *gorm.DB
}

// NewGormRepositoryStore initializes a new GormRepositoryStore
func NewGormRepositoryStore(db *gorm.DB) *GormRepositoryStore {
	return &GormRepositoryStore{db: db}
}

// AllRepositories returns the full stored snapshot.
func (s *GormRepositoryStore) AllRepositories(ctx context.Context) ([]entities.Repository, error) {
	var repositories []entities.Repository
	if err := s.db.WithContext(ctx).Order("id").Find(&repositories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve repositories: %w", err)
	}
	return repositories, nil
}

// ApplyChanges writes creates, updates and deletes in one transaction. Any
// failure rolls back all three.
func (s *GormRepositoryStore) ApplyChanges(ctx context.Context, changes entities.ChangeSet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes.Create) > 0 {
			creates := changes.Create
			if err := tx.CreateInBatches(&creates, createBatchSize).Error; err != nil {
				return fmt.Errorf("failed to create repositories: %w", err)
			}
		}

		for _, update := range changes.Update {
			columns := metadataColumns
			if update.ReadmeRefreshed {
				columns = append(append([]string{}, metadataColumns...), readmeColumns...)
			}

			res := tx.Model(&entities.Repository{ID: update.ID}).
				Select(columns).
				Updates(&update.Repository)
			if res.Error != nil {
				return fmt.Errorf("failed to update repository %d: %w", update.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("failed to update repository %d: %w", update.ID, ErrNoRecordFound)
			}
		}

		if len(changes.Delete) > 0 {
			if err := tx.Where("id IN ?", changes.Delete).Delete(&entities.Repository{}).Error; err != nil {
				return fmt.Errorf("failed to delete repositories: %w", err)
			}
		}

		return nil
	})
}

// ListRepositories returns one page of stored repositories, most recently
// starred first.
func (s *GormRepositoryStore) ListRepositories(ctx context.Context, query ListQuery) ([]entities.Repository, PagingInfo, error) {
	query, offset := getPaginationInfo(query)

	base := s.db.WithContext(ctx).Model(&entities.Repository{})
	if query.Language != "" {
		base = base.Where("language = ?", query.Language)
	}
	base = base.Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, PagingInfo{}, fmt.Errorf("failed to count repositories: %w", err)
	}

	var repositories []entities.Repository
	err := base.
		Order(query.Sort + " " + query.Direction).
		Order("id").
		Offset(offset).
		Limit(query.Limit).
		Find(&repositories).Error
	if err != nil {
		return nil, PagingInfo{}, fmt.Errorf("failed to list repositories: %w", err)
	}

	return repositories, getPagingInfo(query, int(count)), nil
}

func (s *GormRepositoryStore) RepositoryByID(ctx context.Context, id int64) (*entities.Repository, error) {
	var repo entities.Repository
	err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&repo).Error
	if err != nil {
		return nil, err
	}
	if repo.ID == 0 {
		return nil, ErrNoRecordFound
	}
	return &repo, nil
}
