package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/just-nibble/starsync/internal/adapters/db"
	"github.com/just-nibble/starsync/internal/adapters/http/dtos"
	"github.com/just-nibble/starsync/internal/core/domain/entities"
	"github.com/just-nibble/starsync/pkg/response"
)

// RepositoryReader is the read side of the repository store.
type RepositoryReader interface {
	ListRepositories(ctx context.Context, query db.ListQuery) ([]entities.Repository, db.PagingInfo, error)
	RepositoryByID(ctx context.Context, id int64) (*entities.Repository, error)
}

type RepositoryHandler struct {
	store RepositoryReader
}

func NewRepositoryHandler(store RepositoryReader) *RepositoryHandler {
	return &RepositoryHandler{store: store}
}

// ListRepositories godoc
//
//	@Summary	List mirrored starred repositories
//	@Tags		repositories
//	@Produce	json
//	@Param		page		query		int		false	"Page number"
//	@Param		limit		query		int		false	"Page size, at most 100"
//	@Param		language	query		string	false	"Primary language"
//	@Param		sort		query		string	false	"repo_starred_at, repo_pushed_at, stars or full_name"
//	@Param		direction	query		string	false	"asc or desc"
//	@Success	200			{object}	response.Envelope{data=dtos.RepositoryList}
//	@Failure	400			{object}	response.Envelope
//	@Failure	500			{object}	response.Envelope
//	@Router		/repositories [get]
func (h *RepositoryHandler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := optionalInt(q.Get("page"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid page")
		return
	}

	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	repos, paging, err := h.store.ListRepositories(r.Context(), db.ListQuery{
		Page:      page,
		Limit:     limit,
		Sort:      q.Get("sort"),
		Direction: q.Get("direction"),
		Language:  q.Get("language"),
	})
	if err != nil {
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve repositories")
		return
	}

	response.SuccessResponse(w, http.StatusOK, dtos.NewRepositoryList(repos, paging))
}

// GetRepository godoc
//
//	@Summary	Get a mirrored repository with its README
//	@Tags		repositories
//	@Produce	json
//	@Param		id	path		int	true	"GitHub repository id"
//	@Success	200	{object}	response.Envelope{data=dtos.RepositoryDetail}
//	@Failure	400	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Failure	500	{object}	response.Envelope
//	@Router		/repositories/{id} [get]
func (h *RepositoryHandler) GetRepository(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid repository id")
		return
	}

	repo, err := h.store.RepositoryByID(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrNoRecordFound):
		response.ErrorResponse(w, http.StatusNotFound, "Repository not found")
		return
	case err != nil:
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve repository")
		return
	}

	response.SuccessResponse(w, http.StatusOK, dtos.NewRepositoryDetail(*repo))
}

func optionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}
