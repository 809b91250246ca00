package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/just-nibble/starsync/internal/adapters/validators"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

const (
	// StarredPageSize is the per_page value used when listing stars.
	StarredPageSize = 100

	// responseHeaderTimeout bounds a single attempt. Rate limit waits happen
	// above the wire and are not covered by it.
	responseHeaderTimeout = 30 * time.Second
)

// ErrReadmeNotFound is returned when a repository has no README.
var ErrReadmeNotFound = errors.New("readme not found")

// GitHubClient fetches a user's starred repositories and their READMEs.
type GitHubClient struct {
	gh       *gh.Client
	username string
	perPage  int
}

// NewHTTPClient builds the HTTP client used for all GitHub calls:
// token auth on top of the rate limit transport on top of base.
func NewHTTPClient(token string, rateLimited *RateLimitTransport) *http.Client {
	if rateLimited.Base == http.DefaultTransport {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.ResponseHeaderTimeout = responseHeaderTimeout
		rateLimited.Base = base
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rateLimited,
		},
	}
}

// NewGitHubClient creates a client for username's stars. apiURL overrides
// the API root; an empty value keeps api.github.com.
func NewGitHubClient(httpClient *http.Client, username string, apiURL string) (*GitHubClient, error) {
	client := gh.NewClient(httpClient)
	// RateLimitTransport waits out exhausted quota; go-github must not
	// refuse requests on its own from a remembered rate.
	client.DisableRateLimitCheck = true

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub API url: %w", err)
		}
		client.BaseURL = u
	}

	return &GitHubClient{
		gh:       client,
		username: username,
		perPage:  StarredPageSize,
	}, nil
}

// FetchAllStarred walks the starred list page by page until GitHub returns an
// empty page. Order is preserved. Any failed page aborts the whole fetch.
func (c *GitHubClient) FetchAllStarred(ctx context.Context) ([]entities.StarredRepository, error) {
	var all []entities.StarredRepository

	opts := &gh.ActivityListStarredOptions{
		ListOptions: gh.ListOptions{Page: 1, PerPage: c.perPage},
	}

	for {
		page, _, err := c.gh.Activity.ListStarred(ctx, c.username, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch starred repositories page %d: %w", opts.Page, err)
		}

		if len(page) == 0 {
			break
		}

		for _, starred := range page {
			all = append(all, toStarredRepository(starred))
		}

		opts.Page++
	}

	return all, nil
}

// FetchReadme returns the decoded README of fullName ("owner/name"). A
// repository without README yields ErrReadmeNotFound; an empty payload
// yields nil content.
func (c *GitHubClient) FetchReadme(ctx context.Context, fullName string) (*string, error) {
	repo := validators.Repo(fullName)
	owner, name, err := repo.Split()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readme for %q: %w", fullName, err)
	}

	readme, resp, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrReadmeNotFound
		}
		return nil, fmt.Errorf("failed to fetch readme for %s: %w", fullName, err)
	}

	if readme == nil || readme.Content == nil || *readme.Content == "" {
		return nil, nil
	}
	if readme.Encoding == nil {
		// The readme endpoint always base64-encodes content.
		readme.Encoding = gh.Ptr("base64")
	}

	content, err := readme.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode readme for %s: %w", fullName, err)
	}

	return &content, nil
}

func toStarredRepository(s *gh.StarredRepository) entities.StarredRepository {
	r := s.GetRepository()

	return entities.StarredRepository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.Description,
		URL:         r.GetHTMLURL(),
		Language:    r.Language,
		Stars:       r.GetStargazersCount(),
		CreatedAt:   r.GetCreatedAt().Time,
		PushedAt:    r.GetPushedAt().Time,
		StarredAt:   s.GetStarredAt().Time,
	}
}
