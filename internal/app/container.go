package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/davin/movierec-go/internal/api"
	"github.com/davin/movierec-go/internal/cache"
	"github.com/davin/movierec-go/internal/catalog"
	"github.com/davin/movierec-go/internal/config"
	"github.com/davin/movierec-go/internal/recommend"
	"github.com/davin/movierec-go/internal/review"
	"github.com/davin/movierec-go/internal/similarity"
	"github.com/davin/movierec-go/internal/tmdb"
	"go.uber.org/zap"
)

// Container bundles the assembled service graph. All heavy-weight
// initialization (dataset load, matrix load, Redis) happens in Build so the
// entrypoint stays focused on lifecycle.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	router  http.Handler
	closers []func()
}

func (c *Container) Router() http.Handler {
	return c.router
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Read-only catalog and similarity matrices, loaded once.
	cat, err := catalog.Load(cfg.Dataset.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded",
		zap.String("path", cfg.Dataset.CatalogPath),
		zap.Int("titles", cat.Size()),
	)

	contentSim, err := similarity.LoadMatrix(cfg.Dataset.ContentSimPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content similarity matrix: %w", err)
	}
	companySim, err := similarity.LoadMatrix(cfg.Dataset.CompanySimPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load company similarity matrix: %w", err)
	}

	index, err := similarity.New(cat, contentSim, companySim)
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity index: %w", err)
	}

	// Caches: in-memory TTL cache for metadata, optional Redis for reviews.
	metaCache := cache.NewMetadataCache(cfg.Cache.TTL, cfg.Cache.Capacity)

	var redisSvc *cache.RedisService
	if cfg.Redis.Enabled {
		redisSvc, err = cache.NewRedisService(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis service: %w", err)
		}
		closers = append(closers, func() {
			_ = redisSvc.Close()
		})
	}

	tmdbClient := tmdb.NewClient(tmdb.ClientConfig{APIKey: cfg.TMDB.APIKey}, metaCache, logger)

	// Sentiment chain: Gemini primary, OpenAI fallback, both optional.
	var providers []review.Provider
	if cfg.Sentiment.GeminiAPIKey != "" {
		gemini, gerr := review.NewGeminiProvider(ctx, cfg.Sentiment.GeminiAPIKey, logger)
		if gerr != nil {
			logger.Warn("Gemini sentiment provider unavailable", zap.Error(gerr))
		} else {
			providers = append(providers, gemini)
		}
	}
	if openaiProvider := review.NewOpenAIProvider(cfg.Sentiment.OpenAIAPIKey, logger); openaiProvider != nil {
		providers = append(providers, openaiProvider)
	}

	var classifier review.Classifier
	if len(providers) > 0 {
		classifier = review.NewChainClassifier(logger, providers...)
	} else {
		logger.Warn("No sentiment providers configured, reviews will be unlabeled")
	}

	reviewSvc := review.NewService(classifier, redisSvc, logger)
	orchestrator := recommend.NewOrchestrator(index, tmdbClient, logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	handlers := api.NewHandlers(cat, orchestrator, reviewSvc, rng, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		router:  api.NewRouter(handlers),
		closers: closers,
	}, nil
}
