package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/just-nibble/starsync/docs"
	"github.com/just-nibble/starsync/internal/adapters/http/handlers"
)

func NewRouter(repos *handlers.RepositoryHandler, metrics http.Handler, log logrus.FieldLogger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		LoggingMiddleware(log),
	)

	router.Get("/healthz", handlers.Health)
	router.Method(http.MethodGet, "/metrics", metrics)
	NewRepositoryRouter(router, repos)

	// Serve Swagger documentation
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	return router
}

// LoggingMiddleware logs every request at debug level.
func LoggingMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
