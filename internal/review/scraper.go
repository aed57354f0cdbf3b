package review

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/davin/movierec-go/internal/cache"
	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultReviewsBaseURL = "https://www.imdb.com"
	reviewSelector        = "div.text.show-more__control"

	maxReviews     = 5
	scrapeTimeout  = 15 * time.Second
	reviewCacheTTL = 30 * time.Minute
)

// Classifier labels a review text as "Good" or "Bad".
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Service scrapes user reviews for a movie's IMDb id and tags each with a
// sentiment label. Scrape results are cached in Redis when a cache tier is
// configured.
type Service struct {
	httpClient *http.Client
	baseURL    string
	classifier Classifier
	cache      *cache.RedisService
	logger     *zap.Logger
}

func NewService(classifier Classifier, redisCache *cache.RedisService, logger *zap.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: scrapeTimeout},
		baseURL:    defaultReviewsBaseURL,
		classifier: classifier,
		cache:      redisCache,
		logger:     logger,
	}
}

// NewServiceWithBaseURL exists for tests that point the scraper at a local
// server.
func NewServiceWithBaseURL(baseURL string, classifier Classifier, redisCache *cache.RedisService, logger *zap.Logger) *Service {
	s := NewService(classifier, redisCache, logger)
	s.baseURL = baseURL
	return s
}

// FetchReviews returns up to five labeled reviews for the given IMDb id.
// Classifier failures leave the label empty; only an unreachable or
// non-success review page is an error.
func (s *Service) FetchReviews(ctx context.Context, imdbID string) ([]domain.Review, error) {
	cacheKey := fmt.Sprintf("reviews:%s", imdbID)
	if s.cache != nil {
		var cached []domain.Review
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			s.logger.Debug("Review cache hit", zap.String("imdb_id", imdbID))
			return cached, nil
		}
	}

	texts, err := s.scrape(ctx, imdbID)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(texts))
	for _, text := range texts {
		label := ""
		if s.classifier != nil {
			label, err = s.classifier.Classify(ctx, text)
			if err != nil {
				s.logger.Warn("Sentiment classification failed",
					zap.String("imdb_id", imdbID),
					zap.Error(err),
				)
				label = ""
			}
		}
		reviews = append(reviews, domain.Review{Text: text, Label: label})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, reviews, reviewCacheTTL); err != nil {
			s.logger.Warn("Review cache write failed", zap.String("imdb_id", imdbID), zap.Error(err))
		}
	}
	return reviews, nil
}

func (s *Service) scrape(ctx context.Context, imdbID string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/title/%s/reviews?ref_=tt_ov_rt", s.baseURL, imdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MovieRecBot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError("review page unreachable", 502, map[string]any{
			"imdb_id": imdbID,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpstreamError(fmt.Sprintf("review page returned %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"imdb_id": imdbID,
		})
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to parse review page", 502, map[string]any{
			"imdb_id": imdbID,
		}).WithCause(err)
	}

	texts := make([]string, 0, maxReviews)
	doc.Find(reviewSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}
		texts = append(texts, text)
		return len(texts) < maxReviews
	})

	s.logger.Debug("Scraped reviews", zap.String("imdb_id", imdbID), zap.Int("count", len(texts)))
	return texts, nil
}
