package dtos

import (
	"time"

	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

// Repository is a mirrored starred repository without its README body.
type Repository struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	URL             string     `json:"html_url"`
	Language        *string    `json:"language"`
	Stars           int        `json:"stargazers_count"`
	CreatedAt       time.Time  `json:"created_at"`
	PushedAt        time.Time  `json:"pushed_at"`
	StarredAt       time.Time  `json:"starred_at"`
	HasReadme       bool       `json:"has_readme"`
	ReadmeFetchedAt *time.Time `json:"readme_fetched_at"`
}

type RepositoryDetail struct {
	Repository
	Readme *string `json:"readme"`
}

type RepositoryList struct {
	Repositories []Repository  `json:"repositories"`
	Paging       db.PagingInfo `json:"paging"`
}

func NewRepository(repo entities.Repository) Repository {
	return Repository{
		ID:              repo.ID,
		Name:            repo.Name,
		FullName:        repo.FullName,
		Description:     repo.Description,
		URL:             repo.URL,
		Language:        repo.Language,
		Stars:           repo.Stars,
		CreatedAt:       repo.RepoCreatedAt,
		PushedAt:        repo.RepoPushedAt,
		StarredAt:       repo.RepoStarredAt,
		HasReadme:       repo.ReadmeContent != nil,
		ReadmeFetchedAt: repo.ReadmeFetchedAt,
	}
}

func NewRepositoryDetail(repo entities.Repository) RepositoryDetail {
	return RepositoryDetail{Repository: NewRepository(repo), Readme: repo.ReadmeContent}
}

func NewRepositoryList(repos []entities.Repository, paging db.PagingInfo) RepositoryList {
	list := RepositoryList{Repositories: make([]Repository, 0, len(repos)), Paging: paging}
	for _, repo := range repos {
		list.Repositories = append(list.Repositories, NewRepository(repo))
	}
	return list
}
