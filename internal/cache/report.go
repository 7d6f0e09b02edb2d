package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hasmart/retail-ingest/internal/config"
)

const (
	reportKeyPrefix = "report"
	scanBatchSize   = 100
)

// ReportCache memoizes report payloads keyed by report name and query
// parameters. Get decodes into dest and reports whether the key was present.
type ReportCache interface {
	Get(ctx context.Context, report string, params []string, dest any) (bool, error)
	Set(ctx context.Context, report string, params []string, payload any) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, report string, params []string, dest any) (bool, error) {
	key := buildReportKey(report, params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode report cache: %w", err)
	}

	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, report string, params []string, payload any) error {
	key := buildReportKey(report, params)
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix+":", scanBatchSize)
}

func (c *noopReportCache) Get(context.Context, string, []string, any) (bool, error) {
	return false, nil
}

func (c *noopReportCache) Set(context.Context, string, []string, any) error {
	return nil
}

func (c *noopReportCache) InvalidateAll(context.Context) error {
	return nil
}

func buildReportKey(report string, params []string) string {
	digest := sha1.Sum([]byte(strings.Join(params, "|")))
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, report, hex.EncodeToString(digest[:]))
}
