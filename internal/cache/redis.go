package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davin/movierec-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisService is a thin JSON cache over Redis, used for scraped review
// results. Callers treat a nil *RedisService as "no cache tier".
type RedisService struct {
	client *redis.Client
	logger *zap.Logger
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewRedisService(cfg RedisConfig, logger *zap.Logger) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &RedisService{client: client, logger: logger}, nil
}

// Get unmarshals the cached value for key into dest. The second return is
// false when the key does not exist.
func (s *RedisService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		s.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return true, nil
}

func (s *RedisService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		s.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
