package entities

import (
	"time"
)

// Repository is a starred GitHub repository as mirrored in the database.
// ID is the GitHub repository id and never changes between syncs.
type Repository struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name" gorm:"index"`
	Description     *string    `json:"description"`
	URL             string     `json:"url"`
	Language        *string    `json:"language" gorm:"index"`
	Stars           int        `json:"stars"`
	RepoCreatedAt   time.Time  `json:"repo_created_at"`
	RepoPushedAt    time.Time  `json:"repo_pushed_at"`
	RepoStarredAt   time.Time  `json:"repo_starred_at" gorm:"index"`
	ReadmeContent   *string    `json:"readme_content" gorm:"type:text"`
	ReadmeFetchedAt *time.Time `json:"readme_fetched_at"`
}

// ReadmeStale reports whether the cached README is missing or older than
// freshness at the given instant.
func (r Repository) ReadmeStale(now time.Time, freshness time.Duration) bool {
	if r.ReadmeFetchedAt == nil {
		return true
	}
	return r.ReadmeFetchedAt.Before(now.Add(-freshness))
}
