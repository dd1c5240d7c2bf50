package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sdko-org/content-gateway/internal/headers"
	"github.com/sdko-org/content-gateway/internal/metrics"
)

// Object is a cached origin response: status, ordered headers and body.
// Immutable once stored.
type Object struct {
	Status  int          `json:"status"`
	Headers *headers.Map `json:"headers"`
	Body    []byte       `json:"body"`
}

// Gateway wraps the external cache store behind a narrow get/put contract.
// Store faults never propagate: a failed lookup degrades to a miss and a
// failed write leaves the in-flight response untouched.
type Gateway struct {
	rdb *redis.Client
	log *logrus.Entry
}

func NewGateway(logger *logrus.Logger, rdb *redis.Client) *Gateway {
	return &Gateway{
		rdb: rdb,
		log: logger.WithField("component", "cache_gateway"),
	}
}

// Get performs a cache-only lookup. It never reaches the origin. The second
// return value is false on a miss and on any store fault.
func (g *Gateway) Get(ctx context.Context, key string) (*Object, bool) {
	data, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			metrics.CacheErrors.WithLabelValues("get").Inc()
			g.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache lookup failed, treating as miss")
		} else {
			metrics.CacheMisses.Inc()
		}
		return nil, false
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		g.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Corrupt cache entry, treating as miss")
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &obj, true
}

// Put writes the object with the fixed TTL and stale window. The store drops
// the entry at ttl+staleWindow; with a zero window the object is fully
// expired at the TTL boundary. Write failures are logged and swallowed.
func (g *Gateway) Put(ctx context.Context, key string, obj *Object, ttlSeconds, staleWindowSeconds int) {
	data, err := json.Marshal(obj)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("put").Inc()
		g.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Failed to encode cache entry")
		return
	}

	ttl := time.Duration(ttlSeconds+staleWindowSeconds) * time.Second
	if err := g.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("put").Inc()
		g.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache write failed")
	}
}
