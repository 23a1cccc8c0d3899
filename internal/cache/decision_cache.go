package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

const (
	decisionKeyPrefix      = "reorder:decisions"
	decisionScanBatchSize  = 100
	evaluationDayKeyLayout = "2006-01-02"
)

// DecisionCache stores batch evaluation results keyed by request fingerprint.
type DecisionCache interface {
	GetDecisions(ctx context.Context, key string) ([]policy.BatchResult, bool, error)
	SetDecisions(ctx context.Context, key string, results []policy.BatchResult) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisDecisionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDecisionCache struct{}

// NewDecisionCache returns a Redis-backed cache when caching is enabled and a
// no-op cache otherwise.
func NewDecisionCache(cfg config.CacheConfig) (DecisionCache, error) {
	if !cfg.Enabled {
		return &noopDecisionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDecisionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopDecisionCache() DecisionCache {
	return &noopDecisionCache{}
}

func (c *redisDecisionCache) GetDecisions(ctx context.Context, key string) ([]policy.BatchResult, bool, error) {
	payload, err := c.client.Get(ctx, decisionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var results []policy.BatchResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("decode decision cache: %w", err)
	}

	return results, true, nil
}

func (c *redisDecisionCache) SetDecisions(ctx context.Context, key string, results []policy.BatchResult) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode decision cache: %w", err)
	}

	if err := c.client.Set(ctx, decisionKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDecisionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, decisionKeyPrefix, decisionScanBatchSize)
}

func (c *redisDecisionCache) Close() error {
	return c.client.Close()
}

func (n *noopDecisionCache) GetDecisions(ctx context.Context, key string) ([]policy.BatchResult, bool, error) {
	return nil, false, nil
}

func (n *noopDecisionCache) SetDecisions(ctx context.Context, key string, results []policy.BatchResult) error {
	return nil
}

func (n *noopDecisionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopDecisionCache) Close() error {
	return nil
}

func decisionKey(fingerprint string) string {
	return fmt.Sprintf("%s:%s", decisionKeyPrefix, fingerprint)
}

// Fingerprint hashes an evaluation request together with its evaluation day,
// so identical inputs evaluated on the same day share a cache entry.
func Fingerprint(request any, evaluatedAt time.Time) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode cache fingerprint: %w", err)
	}

	h := sha1.New()
	h.Write([]byte(evaluatedAt.UTC().Format(evaluationDayKeyLayout)))
	h.Write([]byte{'|'})
	h.Write(raw)

	return hex.EncodeToString(h.Sum(nil)), nil
}
