package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-ranking/internal/ranking/dto"
	"golang-stock-ranking/pkg/common"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// StockDetailCacheRepository stores computed detail responses. A miss is
// reported as nil without an error.
type StockDetailCacheRepository interface {
	Get(ctx context.Context, exchangeID, instrumentID string) (*dto.StockDetailResponse, error)
	Set(ctx context.Context, exchangeID, instrumentID string, detail *dto.StockDetailResponse) error
	Invalidate(ctx context.Context, exchangeID, instrumentID string) error
	InvalidateAll(ctx context.Context) error
}

// NewStockDetailCacheRepository creates a Redis-backed detail cache. Calls go
// through a circuit breaker that opens after consecutive Redis failures and
// probes again after breakerTimeout.
func NewStockDetailCacheRepository(redisClient *redis.Client, ttl, breakerTimeout time.Duration) StockDetailCacheRepository {
	return &stockDetailCacheRepository{
		redisClient: redisClient,
		ttl:         ttl,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stock-detail-cache",
			Timeout: breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

type stockDetailCacheRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	breaker     *gobreaker.CircuitBreaker
}

func detailKey(exchangeID, instrumentID string) string {
	return fmt.Sprintf(common.RedisKeyStockDetail, exchangeID, instrumentID)
}

// Get returns the cached detail of an instrument.
func (r *stockDetailCacheRepository) Get(ctx context.Context, exchangeID, instrumentID string) (*dto.StockDetailResponse, error) {
	raw, err := r.breaker.Execute(func() (interface{}, error) {
		b, err := r.redisClient.Get(ctx, detailKey(exchangeID, instrumentID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, err
	}
	b, _ := raw.([]byte)
	if b == nil {
		return nil, nil
	}

	var detail dto.StockDetailResponse
	if err := json.Unmarshal(b, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode cached stock detail: %w", err)
	}
	return &detail, nil
}

// Set stores the detail of an instrument for the configured TTL.
func (r *stockDetailCacheRepository) Set(ctx context.Context, exchangeID, instrumentID string, detail *dto.StockDetailResponse) error {
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode stock detail: %w", err)
	}
	_, err = r.breaker.Execute(func() (interface{}, error) {
		return nil, r.redisClient.Set(ctx, detailKey(exchangeID, instrumentID), b, r.ttl).Err()
	})
	return err
}

// Invalidate drops the cached detail of one instrument.
func (r *stockDetailCacheRepository) Invalidate(ctx context.Context, exchangeID, instrumentID string) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.redisClient.Del(ctx, detailKey(exchangeID, instrumentID)).Err()
	})
	return err
}

// InvalidateAll drops every cached detail.
func (r *stockDetailCacheRepository) InvalidateAll(ctx context.Context) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		iter := r.redisClient.Scan(ctx, 0, common.RedisKeyStockDetailPattern, 100).Iterator()
		redisPipe := r.redisClient.Pipeline()
		for iter.Next(ctx) {
			redisPipe.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if redisPipe.Len() == 0 {
			return nil, nil
		}
		_, err := redisPipe.Exec(ctx)
		return nil, err
	})
	return err
}
