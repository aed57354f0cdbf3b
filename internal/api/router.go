package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", h.Home)
		r.Get("/search", h.Search)
		r.Get("/movie/{title}", h.MovieByTitle)
		r.Get("/movie/{title}/company", h.CompanyRecommendations)
		r.Get("/cast/{id}", h.CastByID)
		r.Get("/autocomplete", h.Autocomplete)
	})

	return r
}
