package entities

import "time"

// StarredRepository is one entry of the user's starred list as returned by
// GitHub. It only lives for the duration of a sync run.
type StarredRepository struct {
	ID          int64
	Name        string
	FullName    string
	Description *string
	URL         string
	Language    *string
	Stars       int
	CreatedAt   time.Time
	PushedAt    time.Time
	StarredAt   time.Time
}

// ToRepository maps the remote metadata onto a persisted record. README
// fields are left empty.
func (s StarredRepository) ToRepository() Repository {
	return Repository{
		ID:            s.ID,
		Name:          s.Name,
		FullName:      s.FullName,
		Description:   s.Description,
		URL:           s.URL,
		Language:      s.Language,
		Stars:         s.Stars,
		RepoCreatedAt: s.CreatedAt,
		RepoPushedAt:  s.PushedAt,
		RepoStarredAt: s.StarredAt,
	}
}
