package recommend

import (
	"context"
	"sync"

	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/internal/tmdb"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const personFetchConcurrency = 8

// SimilarityFinder answers the two ranking queries against the precomputed
// matrices.
type SimilarityFinder interface {
	ContentPeers(title string) (domain.CatalogEntry, []domain.CatalogEntry, error)
	CompanyPicks(title string) ([]domain.CatalogEntry, error)
}

// MetadataFetcher is the outbound surface of the metadata client.
type MetadataFetcher interface {
	FetchDetails(ctx context.Context, movieID int) (domain.MovieMetadata, error)
	FetchCredits(ctx context.Context, movieID int) []domain.CastEntry
	FetchPersonDetails(ctx context.Context, personID int) (domain.PersonDetails, error)
	FetchBatchPosters(ctx context.Context, movieIDs []int) []tmdb.Poster
}

// Orchestrator composes the similarity index, metadata cache and metadata
// client into the two user-facing recommendation queries.
type Orchestrator struct {
	index  SimilarityFinder
	client MetadataFetcher
	logger *zap.Logger
}

func NewOrchestrator(index SimilarityFinder, client MetadataFetcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		index:  index,
		client: client,
		logger: logger,
	}
}

// ContentBasedBundle assembles the full movie page payload: own details, top
// cast with biographies, and twelve content-similar peers with posters.
//
// A failed self-details fetch aborts the whole call. Everything else
// degrades: failed person lookups fall back to "N/A" fields, peers whose
// poster fetch failed are dropped from the list.
func (o *Orchestrator) ContentBasedBundle(ctx context.Context, title string) (*domain.RecommendationBundle, error) {
	self, peers, err := o.index.ContentPeers(title)
	if err != nil {
		return nil, err
	}

	details, err := o.client.FetchDetails(ctx, self.ID)
	if err != nil {
		o.logger.Error("Self details fetch failed",
			zap.String("title", title),
			zap.Int("movie_id", self.ID),
			zap.Error(err),
		)
		return nil, err
	}

	cast := o.client.FetchCredits(ctx, self.ID)
	o.enrichCast(ctx, cast)

	bundle := &domain.RecommendationBundle{
		Title:       title,
		Details:     details,
		Cast:        cast,
		Recommended: o.fetchRecommended(ctx, peers),
	}
	return bundle, nil
}

// CompanyBundle returns twelve production-company picks with posters.
func (o *Orchestrator) CompanyBundle(ctx context.Context, title string) ([]domain.RecommendedMovie, error) {
	picks, err := o.index.CompanyPicks(title)
	if err != nil {
		return nil, err
	}
	return o.fetchRecommended(ctx, picks), nil
}

// CastDetails resolves one person directly against the metadata service.
// Nothing ambient is consulted: any person id can be looked up regardless of
// which bundle was rendered last, and concurrent requests cannot bleed into
// each other.
func (o *Orchestrator) CastDetails(ctx context.Context, personID int) (domain.PersonDetails, error) {
	return o.client.FetchPersonDetails(ctx, personID)
}

// HomePicks fetches posters for a pre-sampled set of catalog entries.
func (o *Orchestrator) HomePicks(ctx context.Context, entries []domain.CatalogEntry) []domain.RecommendedMovie {
	return o.fetchRecommended(ctx, entries)
}

// enrichCast fans out person-detail fetches for every cast member and merges
// the results in place. Individual failures leave "N/A" sentinels.
func (o *Orchestrator) enrichCast(ctx context.Context, cast []domain.CastEntry) {
	if len(cast) == 0 {
		return
	}

	detailsByIdx := make([]*domain.PersonDetails, len(cast))
	detailsMu := sync.Mutex{}

	p := pool.New().WithMaxGoroutines(personFetchConcurrency)
	for idx := range cast {
		idx := idx
		p.Go(func() {
			details, err := o.client.FetchPersonDetails(ctx, cast[idx].PersonID)
			if err != nil {
				o.logger.Warn("Person details fetch failed",
					zap.Int("person_id", cast[idx].PersonID),
					zap.Error(err),
				)
				return
			}
			detailsMu.Lock()
			detailsByIdx[idx] = &details
			detailsMu.Unlock()
		})
	}
	p.Wait()

	for idx := range cast {
		if details := detailsByIdx[idx]; details != nil {
			cast[idx].Biography = details.Biography
			cast[idx].Birthday = details.Birthday
			cast[idx].PlaceOfBirth = details.PlaceOfBirth
			cast[idx].Gender = details.Gender
		} else {
			cast[idx].Biography = tmdb.Unavailable
			cast[idx].Birthday = tmdb.Unavailable
			cast[idx].PlaceOfBirth = tmdb.Unavailable
			cast[idx].Gender = tmdb.Unavailable
		}
	}
}

// fetchRecommended joins batch poster results back onto their entries by
// movie id, dropping entries whose fetch failed.
func (o *Orchestrator) fetchRecommended(ctx context.Context, entries []domain.CatalogEntry) []domain.RecommendedMovie {
	ids := make([]int, len(entries))
	titleByID := make(map[int]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
		titleByID[entry.ID] = entry.Title
	}

	posters := o.client.FetchBatchPosters(ctx, ids)

	recommended := make([]domain.RecommendedMovie, 0, len(posters))
	for _, poster := range posters {
		recommended = append(recommended, domain.RecommendedMovie{
			Title:     titleByID[poster.MovieID],
			PosterURL: poster.URL,
		})
	}
	return recommended
}
