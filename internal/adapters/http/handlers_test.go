package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/adapters/db/mocks"
	"github.com/just-nibble/starsync/internal/adapters/http/handlers"
	"github.com/just-nibble/starsync/internal/adapters/metrics"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) (*mocks.RepositoryStore, http.Handler) {
	t.Helper()

	store := &mocks.RepositoryStore{}
	reg := metrics.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	recorder.RunStarted()
	logger, _ := logtest.NewNullLogger()

	return store, NewRouter(handlers.NewRepositoryHandler(store), metrics.Handler(reg), logger)
}

func serve(t *testing.T, router http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

	var body envelope
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func sampleRepository() entities.Repository {
	readme := "# starsync"
	fetched := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	return entities.Repository{
		ID:              42,
		Name:            "starsync",
		FullName:        "octocat/starsync",
		URL:             "https://github.com/octocat/starsync",
		Stars:           7,
		RepoStarredAt:   fetched,
		ReadmeContent:   &readme,
		ReadmeFetchedAt: &fetched,
	}
}

func TestHealthz(t *testing.T) {
	_, router := setupRouter(t)

	rr, body := serve(t, router, "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", body.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	_, router := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `sync_runs_total{app="gh-star-sync"} 1`)
}

func TestSwaggerDocument(t *testing.T) {
	_, router := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/repositories/{id}")
}

func TestListRepositories(t *testing.T) {
	store, router := setupRouter(t)

	store.On("ListRepositories", mock.Anything, db.ListQuery{Page: 2, Limit: 5, Language: "Go"}).
		Return([]entities.Repository{sampleRepository()}, db.PagingInfo{TotalCount: 6, Page: 2}, nil).Once()

	rr, body := serve(t, router, "/repositories?page=2&limit=5&language=Go")

	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Repositories []map[string]any `json:"repositories"`
		Paging       db.PagingInfo    `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Len(t, list.Repositories, 1)
	assert.Equal(t, "octocat/starsync", list.Repositories[0]["full_name"])
	assert.Equal(t, true, list.Repositories[0]["has_readme"])
	assert.NotContains(t, list.Repositories[0], "readme")
	assert.Equal(t, int64(6), list.Paging.TotalCount)
	store.AssertExpectations(t)
}

func TestListRepositoriesErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(store *mocks.RepositoryStore)
		status int
	}{
		{name: "invalid page", target: "/repositories?page=two", status: http.StatusBadRequest},
		{name: "negative limit", target: "/repositories?limit=-1", status: http.StatusBadRequest},
		{
			name:   "store failure",
			target: "/repositories",
			setup: func(store *mocks.RepositoryStore) {
				store.On("ListRepositories", mock.Anything, mock.Anything).
					Return(nil, db.PagingInfo{}, errors.New("connection reset")).Once()
			},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, router := setupRouter(t)
			if tt.setup != nil {
				tt.setup(store)
			}

			rr, body := serve(t, router, tt.target)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "error", body.Status)
			store.AssertExpectations(t)
		})
	}
}

func TestGetRepository(t *testing.T) {
	store, router := setupRouter(t)
	repo := sampleRepository()
	store.On("RepositoryByID", mock.Anything, int64(42)).Return(&repo, nil).Once()

	rr, body := serve(t, router, "/repositories/42")

	require.Equal(t, http.StatusOK, rr.Code)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &detail))
	assert.Equal(t, "# starsync", detail["readme"])
	assert.Equal(t, float64(42), detail["id"])
	store.AssertExpectations(t)
}

func TestGetRepositoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "not a number", target: "/repositories/abc", status: http.StatusBadRequest},
		{name: "not found", target: "/repositories/7", err: db.ErrNoRecordFound, status: http.StatusNotFound},
		{name: "store failure", target: "/repositories/7", err: errors.New("timeout"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, router := setupRouter(t)
			if tt.err != nil {
				store.On("RepositoryByID", mock.Anything, int64(7)).Return(nil, tt.err).Once()
			}

			rr, body := serve(t, router, tt.target)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "error", body.Status)
			store.AssertExpectations(t)
		})
	}
}
