package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/davin/movierec-go/internal/cache"
	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/original"

	requestTimeout   = 10 * time.Second
	topCastSize      = 8
	batchConcurrency = 12

	// Unavailable marks person fields the upstream did not provide.
	Unavailable = "N/A"
)

// Client fetches movie details, credits and person biographies from the
// external metadata service. Every call is attempted exactly once; there is
// no retry layer, callers decide whether a failure degrades or aborts.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	imageBaseURL string
	cache        *cache.MetadataCache
	logger       *zap.Logger
}

type ClientConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	HTTPClient   *http.Client
}

func NewClient(cfg ClientConfig, metaCache *cache.MetadataCache, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		httpClient:   cfg.HTTPClient,
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		cache:        metaCache,
		logger:       logger,
	}
}

type movieResponse struct {
	PosterPath  string  `json:"poster_path"`
	IMDbID      string  `json:"imdb_id"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	Status      string  `json:"status"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type creditsResponse struct {
	Cast []struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Character   string `json:"character"`
		ProfilePath string `json:"profile_path"`
		Order       int    `json:"order"`
	} `json:"cast"`
}

type personResponse struct {
	Biography    string `json:"biography"`
	Birthday     string `json:"birthday"`
	PlaceOfBirth string `json:"place_of_birth"`
	Gender       int    `json:"gender"`
}

// Poster pairs a movie id with its resolved poster URL so batch callers can
// join results back to titles without positional guessing.
type Poster struct {
	MovieID int
	URL     string
}

// FetchDetails returns the metadata payload for one movie, consulting the
// TTL cache first.
func (c *Client) FetchDetails(ctx context.Context, movieID int) (domain.MovieMetadata, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(movieID); ok {
			return cached, nil
		}
	}

	body, err := c.doGet(ctx, fmt.Sprintf("/movie/%d", movieID))
	if err != nil {
		return domain.MovieMetadata{}, err
	}

	var raw movieResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.MovieMetadata{}, errors.NewUpstreamError("failed to decode movie details", 502, map[string]any{
			"movie_id": movieID,
		}).WithCause(err)
	}

	genres := make([]string, 0, len(raw.Genres))
	for _, genre := range raw.Genres {
		genres = append(genres, genre.Name)
	}

	imdbID := raw.IMDbID
	if imdbID == "" {
		imdbID = Unavailable
	}

	metadata := domain.MovieMetadata{
		PosterURL:   c.imageBaseURL + raw.PosterPath,
		IMDbID:      imdbID,
		Genres:      genres,
		Overview:    raw.Overview,
		Rating:      raw.VoteAverage,
		VoteCount:   raw.VoteCount,
		ReleaseDate: raw.ReleaseDate,
		Runtime:     FormatRuntime(raw.Runtime),
		Status:      raw.Status,
	}

	if c.cache != nil {
		c.cache.Put(movieID, metadata)
	}
	return metadata, nil
}

// FetchCredits returns up to eight cast members sorted by on-screen billing
// order, biography fields unset. Upstream failures yield an empty list, not
// an error: a movie page without a cast strip is preferable to no page.
func (c *Client) FetchCredits(ctx context.Context, movieID int) []domain.CastEntry {
	body, err := c.doGet(ctx, fmt.Sprintf("/movie/%d/credits", movieID))
	if err != nil {
		c.logger.Warn("Credits fetch failed", zap.Int("movie_id", movieID), zap.Error(err))
		return []domain.CastEntry{}
	}

	var raw creditsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("Credits decode failed", zap.Int("movie_id", movieID), zap.Error(err))
		return []domain.CastEntry{}
	}

	sort.SliceStable(raw.Cast, func(i, j int) bool {
		return raw.Cast[i].Order < raw.Cast[j].Order
	})
	if len(raw.Cast) > topCastSize {
		raw.Cast = raw.Cast[:topCastSize]
	}

	entries := make([]domain.CastEntry, 0, len(raw.Cast))
	for _, member := range raw.Cast {
		entries = append(entries, domain.CastEntry{
			PersonID:   member.ID,
			Name:       member.Name,
			Character:  member.Character,
			ProfileURL: c.imageBaseURL + member.ProfilePath,
		})
	}
	return entries
}

// FetchPersonDetails returns the biographical slice for one person. Person
// lookups are not cached: they run once per rendered bundle.
func (c *Client) FetchPersonDetails(ctx context.Context, personID int) (domain.PersonDetails, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/person/%d", personID))
	if err != nil {
		return domain.PersonDetails{}, err
	}

	var raw personResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PersonDetails{}, errors.NewUpstreamError("failed to decode person details", 502, map[string]any{
			"person_id": personID,
		}).WithCause(err)
	}

	return domain.PersonDetails{
		Biography:    orUnavailable(raw.Biography),
		Birthday:     orUnavailable(raw.Birthday),
		PlaceOfBirth: orUnavailable(raw.PlaceOfBirth),
		Gender:       GenderLabel(raw.Gender),
	}, nil
}

// FetchBatchPosters fans out detail fetches for every id concurrently and
// returns posters for the successful ones, preserving input order. Failed
// ids are dropped.
func (c *Client) FetchBatchPosters(ctx context.Context, movieIDs []int) []Poster {
	results := make([]*Poster, len(movieIDs))
	resultsMu := sync.Mutex{}

	p := pool.New().WithMaxGoroutines(batchConcurrency)
	for idx, movieID := range movieIDs {
		idx, movieID := idx, movieID
		p.Go(func() {
			details, err := c.FetchDetails(ctx, movieID)
			if err != nil {
				c.logger.Warn("Poster fetch failed, dropping from batch",
					zap.Int("movie_id", movieID),
					zap.Error(err),
				)
				return
			}
			resultsMu.Lock()
			results[idx] = &Poster{MovieID: movieID, URL: details.PosterURL}
			resultsMu.Unlock()
		})
	}
	p.Wait()

	posters := make([]Poster, 0, len(movieIDs))
	for _, result := range results {
		if result != nil {
			posters = append(posters, *result)
		}
	}
	return posters
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError("metadata service unreachable", 502, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to read metadata response", 502, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpstreamError(fmt.Sprintf("metadata service returned %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
		})
	}

	return body, nil
}

// FormatRuntime renders a raw minute count as "H hour(s) M min(s)", dropping
// the minutes part when it divides evenly.
func FormatRuntime(minutes int) string {
	if minutes%60 != 0 {
		return fmt.Sprintf("%d hour(s) %d min(s)", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%d hour(s)", minutes/60)
}

// GenderLabel folds the upstream numeric gender code into a label. Code 2 is
// "Male", every other code including "unknown" maps to "Female". Known data
// accuracy gap inherited from the upstream contract; do not widen without
// product sign-off.
func GenderLabel(code int) string {
	if code == 2 {
		return "Male"
	}
	return "Female"
}

func orUnavailable(value string) string {
	if value == "" {
		return Unavailable
	}
	return value
}
