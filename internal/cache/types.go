package cache

import (
	"time"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
)

// CachedAssessments is the payload stored per cache key
type CachedAssessments struct {
	Key         string                  `json:"key"`
	Assessments []assessment.Assessment `json:"assessments"`
	CachedAt    time.Time               `json:"cached_at"`
	TTL         int64                   `json:"ttl"`
}

// Stats represents cache performance statistics
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Errors      int64   `json:"errors"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage_bytes"`
}

// Config contains cache configuration
type Config struct {
	RedisURL       string
	MaxConnections int
	MinIdleConns   int
	DefaultTTL     time.Duration
	KeyPrefix      string
}
