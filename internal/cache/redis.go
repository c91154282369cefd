package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
)

// AssessmentCache stores assessment results in Redis.
// Entries are keyed by the resolved controls, the requested regulations and
// the UTC day, since deadlines change when the date rolls over.
type AssessmentCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// New creates a Redis-backed assessment cache and verifies connectivity
func New(ctx context.Context, config *Config, logger *zap.Logger) (*AssessmentCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pool
	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	c := NewWithClient(redis.NewClient(opts), config, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Ping(pingCtx).Err(); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Assessment cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return c, nil
}

// NewWithClient wraps an existing Redis client
func NewWithClient(client *redis.Client, config *Config, logger *zap.Logger) *AssessmentCache {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "compliance"
	}
	return &AssessmentCache{
		client: client,
		config: config,
		logger: logger,
	}
}

// Key derives the cache key for an assessment request
func (c *AssessmentCache) Key(controls assessment.Controls, regulationIDs []string, day time.Time) string {
	ids := make([]string, len(regulationIDs))
	copy(ids, regulationIDs)

	hasher := sha256.New()
	fmt.Fprintf(hasher, "%t|%t|%t|%t|%t|%t|",
		controls.Encryption,
		controls.ConsentManagement,
		controls.AuditLogging,
		controls.AccessControls,
		controls.DataSubjectRights,
		controls.BreachResponse,
	)
	// regulation order is significant: it is the order of the returned assessments
	hasher.Write([]byte(strings.Join(ids, ",")))
	hasher.Write([]byte("|" + day.UTC().Format("2006-01-02")))

	hash := hex.EncodeToString(hasher.Sum(nil))
	return fmt.Sprintf("%s:assess:%s", c.config.KeyPrefix, hash[:24])
}

// Get returns cached assessments for key. A miss returns (nil, false, nil).
func (c *AssessmentCache) Get(ctx context.Context, key string) ([]assessment.Assessment, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		c.errors.Add(1)
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	var cached CachedAssessments
	if err := json.Unmarshal(data, &cached); err != nil {
		c.errors.Add(1)
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false, nil
	}

	c.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("key", key), zap.Int("assessments", len(cached.Assessments)))
	return cached.Assessments, true, nil
}

// Set stores assessments under key with the configured TTL
func (c *AssessmentCache) Set(ctx context.Context, key string, assessments []assessment.Assessment) error {
	payload := CachedAssessments{
		Key:         key,
		Assessments: assessments,
		CachedAt:    time.Now().UTC(),
		TTL:         int64(c.config.DefaultTTL.Seconds()),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal assessments for caching: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("failed to cache assessments: %w", err)
	}

	return nil
}

// Stats returns cache performance statistics
func (c *AssessmentCache) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	info, err := c.client.Info(ctx, "memory").Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get Redis info: %w", err)
	}
	stats.MemoryUsage = parseUsedMemory(info)

	keys, err := c.countKeys(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalKeys = keys

	return stats, nil
}

// Clear removes every key under the cache prefix
func (c *AssessmentCache) Clear(ctx context.Context) (int, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	// Delete keys in batches
	sort.Strings(keys)
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return i, fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	c.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return len(keys), nil
}

// Close closes the Redis connection
func (c *AssessmentCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *AssessmentCache) countKeys(ctx context.Context) (int64, error) {
	keys, err := c.scanKeys(ctx)
	return int64(len(keys)), err
}

func (c *AssessmentCache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.config.KeyPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return keys, nil
}

// parseUsedMemory extracts used_memory from an INFO memory reply
func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if memStr, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
				return mem
			}
		}
	}
	return 0
}

// maskRedisURL masks the password in a Redis URL for logging
func maskRedisURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userPart := url[:at]
	colon := strings.LastIndex(userPart, ":")
	scheme := strings.Index(userPart, "://")
	if colon < 0 || colon <= scheme+2 {
		return url
	}
	return userPart[:colon+1] + "***" + url[at:]
}
