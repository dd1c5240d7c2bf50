package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/sdko-org/content-gateway/internal/cache"
	"github.com/sdko-org/content-gateway/internal/config"
	"github.com/sdko-org/content-gateway/internal/metrics"
	"github.com/sdko-org/content-gateway/internal/origin"
	"github.com/sdko-org/content-gateway/internal/requestctx"
	"github.com/sdko-org/content-gateway/internal/telemetry"
)

type Cache interface {
	Get(ctx context.Context, key string) (*cache.Object, bool)
	Put(ctx context.Context, key string, obj *cache.Object, ttlSeconds, staleWindowSeconds int)
}

type Origin interface {
	Fetch(ctx context.Context, path string) origin.Result
}

type Emitter interface {
	Emit(ctx context.Context, rc *requestctx.Context, out telemetry.Outcome)
}

// Gateway sequences one request through cache lookup, origin fetch-through,
// cache population and telemetry emission. Every request yields exactly one
// response and exactly one telemetry record, whatever fails along the way.
type Gateway struct {
	cfg     *config.Config
	cache   Cache
	origin  Origin
	emitter Emitter
	log     *logrus.Entry
	group   *singleflight.Group
}

func NewGateway(logger *logrus.Logger, cfg *config.Config, c Cache, o Origin, e Emitter) *Gateway {
	g := &Gateway{
		cfg:     cfg,
		cache:   c,
		origin:  o,
		emitter: e,
		log:     logger.WithField("component", "gateway"),
	}
	if cfg.CoalesceRequests {
		g.group = new(singleflight.Group)
	}
	return g
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rc := requestctx.Extract(r)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("unexpected fault: %v", rec)
			g.log.WithFields(logrus.Fields{"path": rc.Path, "error": err}).Error("Request pipeline fault")
			g.finish(r.Context(), rc, telemetry.Outcome{
				CacheStatus:  telemetry.StatusError,
				EventType:    telemetry.EventError,
				ResponseTime: time.Since(start),
				Err:          err,
			})
			writeInternalError(w)
		}
	}()

	key := cache.Key(rc.Path)

	if obj, ok := g.cache.Get(r.Context(), key); ok {
		g.log.WithFields(logrus.Fields{"path": rc.Path, "source": "cache"}).Info("Serving object from cache")
		g.finish(r.Context(), rc, telemetry.Outcome{
			CacheStatus:  telemetry.StatusHit,
			EventType:    telemetry.EventCacheHit,
			ResponseTime: time.Since(start),
		})
		writeObject(w, obj)
		return
	}

	// A cache-read fault and a miss are indistinguishable here: both fall
	// through to the origin.
	g.log.WithFields(logrus.Fields{"path": rc.Path, "source": "origin"}).Info("Fetching object from origin")

	switch res := g.fetchOrigin(r.Context(), rc.Path).(type) {
	case origin.Success:
		// The cached object gets its own copy of the body and headers so
		// neither side can mutate the other.
		stored := &cache.Object{
			Status:  res.Status,
			Headers: res.Headers.Clone(),
			Body:    append([]byte(nil), res.Body...),
		}
		g.cache.Put(r.Context(), key, stored, g.cfg.CacheTTLSeconds, g.cfg.StaleWindowSeconds)
		g.finish(r.Context(), rc, telemetry.Outcome{
			CacheStatus:   telemetry.StatusMiss,
			EventType:     telemetry.EventSuccess,
			ResponseTime:  time.Since(start),
			OriginHeaders: res.Headers,
		})
		writeObject(w, &cache.Object{Status: res.Status, Headers: res.Headers, Body: res.Body})

	case origin.Failure:
		g.finish(r.Context(), rc, telemetry.Outcome{
			CacheStatus:  telemetry.StatusMiss,
			EventType:    telemetry.EventOriginError,
			ResponseTime: time.Since(start),
			Err:          fmt.Errorf("origin returned status %d", res.Status),
		})
		writeNotFound(w)

	case origin.TransportError:
		g.finish(r.Context(), rc, telemetry.Outcome{
			CacheStatus:  telemetry.StatusMiss,
			EventType:    telemetry.EventOriginError,
			ResponseTime: time.Since(start),
			Err:          res.Cause,
		})
		writeNotFound(w)
	}
}

// finish emits the single telemetry record for the request. Emission is
// awaited before any response bytes are written so the response and its
// record stay consistent.
func (g *Gateway) finish(ctx context.Context, rc *requestctx.Context, out telemetry.Outcome) {
	g.emitter.Emit(ctx, rc, out)
	metrics.RequestsTotal.WithLabelValues(string(out.EventType)).Inc()
}

// fetchOrigin coalesces concurrent fetches for the same path when enabled.
// Each waiter still runs its own cache-put, telemetry and response sequence
// on the shared result.
func (g *Gateway) fetchOrigin(ctx context.Context, path string) origin.Result {
	if g.group == nil {
		return g.origin.Fetch(ctx, path)
	}
	v, _, _ := g.group.Do(path, func() (interface{}, error) {
		return g.origin.Fetch(ctx, path), nil
	})
	return v.(origin.Result)
}
