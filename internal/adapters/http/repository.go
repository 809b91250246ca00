package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/just-nibble/starsync/internal/adapters/http/handlers"
)

func NewRepositoryRouter(router chi.Router, handler *handlers.RepositoryHandler) {
	router.Get("/repositories", handler.ListRepositories)
	router.Get("/repositories/{id}", handler.GetRepository)
}
