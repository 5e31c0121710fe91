package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every handler on a chi router. mws are installed right
// after the request id and real ip middleware.
func NewRouter(lists *TaskListHandler, tasks *TaskHandler, system *SystemHandler, mws ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mws...)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", system.Root)
	r.Get("/health", system.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/task-lists", lists.Routes())
		r.Mount("/tasks", tasks.Routes())
	})

	return r
}
