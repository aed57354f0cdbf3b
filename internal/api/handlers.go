package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/davin/movierec-go/internal/catalog"
	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/internal/tmdb"
	"github.com/davin/movierec-go/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	autocompleteLimit = 10
	homeSampleSize    = 16
)

// Recommender is the orchestrator surface the handlers depend on.
type Recommender interface {
	ContentBasedBundle(ctx context.Context, title string) (*domain.RecommendationBundle, error)
	CompanyBundle(ctx context.Context, title string) ([]domain.RecommendedMovie, error)
	CastDetails(ctx context.Context, personID int) (domain.PersonDetails, error)
	HomePicks(ctx context.Context, entries []domain.CatalogEntry) []domain.RecommendedMovie
}

// ReviewFetcher is the review scraping surface; nil means reviews disabled.
type ReviewFetcher interface {
	FetchReviews(ctx context.Context, imdbID string) ([]domain.Review, error)
}

type Handlers struct {
	catalog     *catalog.Catalog
	recommender Recommender
	reviews     ReviewFetcher
	logger      *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewHandlers(cat *catalog.Catalog, recommender Recommender, reviews ReviewFetcher, rng *rand.Rand, logger *zap.Logger) *Handlers {
	return &Handlers{
		catalog:     cat,
		recommender: recommender,
		reviews:     reviews,
		rng:         rng,
		logger:      logger,
	}
}

type moviePageResponse struct {
	Title              string                    `json:"title"`
	Details            domain.MovieMetadata      `json:"details"`
	TopCast            []domain.CastEntry        `json:"top_cast"`
	Recommended        []domain.RecommendedMovie `json:"recommended"`
	CompanyRecommended []domain.RecommendedMovie `json:"company_recommended"`
	Reviews            []domain.Review           `json:"reviews"`
}

// normalizeTitle folds underscores back to spaces; both the path and query
// forms accept underscore-separated titles.
func normalizeTitle(raw string) string {
	return strings.Join(strings.Split(raw, "_"), " ")
}

// MovieByTitle renders the full movie page payload. Path titles use
// underscores in place of spaces.
func (h *Handlers) MovieByTitle(w http.ResponseWriter, r *http.Request) {
	h.renderMoviePage(w, r, normalizeTitle(chi.URLParam(r, "title")))
}

// Search resolves the free-form query parameter to a movie page payload.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(w, errors.NewNotFoundError("movie", ""))
		return
	}
	h.renderMoviePage(w, r, normalizeTitle(query))
}

func (h *Handlers) renderMoviePage(w http.ResponseWriter, r *http.Request, title string) {
	ctx := r.Context()

	bundle, err := h.recommender.ContentBasedBundle(ctx, title)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The company strip and reviews degrade to empty sections; the page
	// renders as long as the core bundle resolved.
	companyPicks, err := h.recommender.CompanyBundle(ctx, title)
	if err != nil {
		h.logger.Warn("Company recommendations unavailable", zap.String("title", title), zap.Error(err))
		companyPicks = []domain.RecommendedMovie{}
	}

	reviews := []domain.Review{}
	if h.reviews != nil && bundle.Details.IMDbID != "" && bundle.Details.IMDbID != tmdb.Unavailable {
		fetched, err := h.reviews.FetchReviews(ctx, bundle.Details.IMDbID)
		if err != nil {
			h.logger.Warn("Reviews unavailable", zap.String("imdb_id", bundle.Details.IMDbID), zap.Error(err))
		} else {
			reviews = fetched
		}
	}

	h.writeJSON(w, http.StatusOK, moviePageResponse{
		Title:              bundle.Title,
		Details:            bundle.Details,
		TopCast:            bundle.Cast,
		Recommended:        bundle.Recommended,
		CompanyRecommended: companyPicks,
		Reviews:            reviews,
	})
}

// CompanyRecommendations serves the production-company bundle on its own,
// with the strict failure contract (404 when the filtered pool is too
// small).
func (h *Handlers) CompanyRecommendations(w http.ResponseWriter, r *http.Request) {
	title := normalizeTitle(chi.URLParam(r, "title"))

	picks, err := h.recommender.CompanyBundle(r.Context(), title)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"recommended": picks})
}

// CastByID resolves one cast member's biography directly against the
// metadata service.
func (h *Handlers) CastByID(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, errors.NewNotFoundError("cast member", chi.URLParam(r, "id")))
		return
	}

	details, err := h.recommender.CastDetails(r.Context(), personID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, details)
}

// Autocomplete returns up to ten catalog titles matching the query.
func (h *Handlers) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	suggestions := make([]map[string]string, 0, autocompleteLimit)
	for _, title := range h.catalog.Autocomplete(query, autocompleteLimit) {
		suggestions = append(suggestions, map[string]string{"title": title})
	}

	h.writeJSON(w, http.StatusOK, suggestions)
}

// Home serves a random sample of catalog titles with posters for the
// landing page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.rngMu.Lock()
	entries := h.catalog.RandomEntries(homeSampleSize, h.rng)
	h.rngMu.Unlock()

	movies := h.recommender.HomePicks(r.Context(), entries)
	h.writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)

	message := "internal error"
	switch {
	case errors.IsNotFound(err):
		message = "Movie not found in our database"
	case errors.IsInsufficientCandidates(err):
		message = "No recommendations available"
	case errors.IsUpstream(err):
		status = http.StatusBadGateway
		message = "Metadata service unavailable"
	}

	if status >= 500 {
		h.logger.Error("Request failed", zap.Error(err))
	}

	h.writeJSON(w, status, map[string]string{"error": message})
}
