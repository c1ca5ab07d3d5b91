package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/domain"
)

const (
	runSummaryKeyPrefix = "calc_run:summary"
	runDetailKeyPrefix  = "calc_run:detail"
	runScanBatchSize    = 100
)

// RunCache caches the persisted output of finished runs. Completed runs are
// immutable, so entries only leave via TTL or an explicit invalidation after
// a re-run against the same key space.
type RunCache interface {
	GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, bool, error)
	SetSummary(ctx context.Context, runID int64, rows []domain.DispatchSummary) error
	GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, bool, error)
	SetDetail(ctx context.Context, runID int64, filter domain.DetailFilter, rows []domain.DispatchDetail, total int) error
	InvalidateRun(ctx context.Context, runID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisRunCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRunCache struct{}

func NewRunCache(cfg config.CacheConfig) (RunCache, error) {
	if !cfg.Enabled {
		return &noopRunCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRunCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRunCache() RunCache {
	return &noopRunCache{}
}

func (c *redisRunCache) GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, bool, error) {
	key := buildRunSummaryKey(runID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.DispatchSummary
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode run summary cache: %w", err)
	}

	return rows, true, nil
}

func (c *redisRunCache) SetSummary(ctx context.Context, runID int64, rows []domain.DispatchSummary) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode run summary cache: %w", err)
	}

	if err := c.client.Set(ctx, buildRunSummaryKey(runID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// detailPage is the cached payload of one detail read. The filtered total
// rides along with the page so a cache hit reports the same pagination
// metadata as the count query it replaces.
type detailPage struct {
	Rows  []domain.DispatchDetail `json:"rows"`
	Total int                     `json:"total"`
}

func (c *redisRunCache) GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, bool, error) {
	key := buildRunDetailKey(runID, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get failed: %w", err)
	}

	var page detailPage
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, 0, false, fmt.Errorf("decode run detail cache: %w", err)
	}

	return page.Rows, page.Total, true, nil
}

func (c *redisRunCache) SetDetail(ctx context.Context, runID int64, filter domain.DetailFilter, rows []domain.DispatchDetail, total int) error {
	payload, err := json.Marshal(detailPage{Rows: rows, Total: total})
	if err != nil {
		return fmt.Errorf("encode run detail cache: %w", err)
	}

	if err := c.client.Set(ctx, buildRunDetailKey(runID, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRunCache) InvalidateRun(ctx context.Context, runID int64) error {
	if err := c.client.Del(ctx, buildRunSummaryKey(runID)).Err(); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, fmt.Sprintf("%s:%d", runDetailKeyPrefix, runID), runScanBatchSize)
}

func (c *redisRunCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, runSummaryKeyPrefix, runScanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, runDetailKeyPrefix, runScanBatchSize)
}

func (n *noopRunCache) GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, bool, error) {
	return nil, false, nil
}

func (n *noopRunCache) SetSummary(ctx context.Context, runID int64, rows []domain.DispatchSummary) error {
	return nil
}

func (n *noopRunCache) GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, bool, error) {
	return nil, 0, false, nil
}

func (n *noopRunCache) SetDetail(ctx context.Context, runID int64, filter domain.DetailFilter, rows []domain.DispatchDetail, total int) error {
	return nil
}

func (n *noopRunCache) InvalidateRun(ctx context.Context, runID int64) error {
	return nil
}

func (n *noopRunCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRunSummaryKey(runID int64) string {
	return fmt.Sprintf("%s:%d", runSummaryKeyPrefix, runID)
}

func buildRunDetailKey(runID int64, filter domain.DetailFilter) string {
	return fmt.Sprintf("%s:%d:%s", runDetailKeyPrefix, runID, detailFilterHash(filter))
}

func detailFilterHash(filter domain.DetailFilter) string {
	parts := []string{}

	if filter.Article != "" {
		parts = append(parts, "article="+strings.ToUpper(strings.TrimSpace(filter.Article)))
	}
	if filter.Site != "" {
		parts = append(parts, "site="+strings.ToUpper(strings.TrimSpace(filter.Site)))
	}
	if filter.DispatchType != "" {
		parts = append(parts, "dispatch_type="+strings.TrimSpace(filter.DispatchType))
	}
	if filter.PromoOnly {
		parts = append(parts, "promo_only=1")
	}
	if filter.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", filter.Page))
	}
	if filter.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", filter.PageSize))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
