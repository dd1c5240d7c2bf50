package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdko-org/content-gateway/internal/headers"
)

func newTestGateway(t *testing.T) (*Gateway, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewGateway(logger, rdb), mr
}

func testObject() *Object {
	h := headers.New()
	h.Set("Content-Type", "image/png")
	h.Set("ETag", `"abc123"`)
	return &Object{Status: 200, Headers: h, Body: []byte("png-bytes")}
}

func TestKeyDerivation(t *testing.T) {
	assert.Equal(t, "s3-object:/images/logo.png", Key("/images/logo.png"))

	// Verbatim mapping: no normalization of case, trailing slash or query.
	assert.NotEqual(t, Key("/a"), Key("/a/"))
	assert.NotEqual(t, Key("/A"), Key("/a"))
	assert.NotEqual(t, Key("/a?x=1"), Key("/a"))
	assert.Equal(t, Key("/same"), Key("/same"))
}

func TestPutGetRoundTrip(t *testing.T) {
	g, mr := newTestGateway(t)
	ctx := context.Background()
	key := Key("/images/logo.png")

	g.Put(ctx, key, testObject(), 800, 0)

	got, ok := g.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, 200, got.Status)
	assert.Equal(t, []byte("png-bytes"), got.Body)
	assert.Equal(t, []string{"Content-Type", "ETag"}, got.Headers.Keys())

	// TTL is ttl+staleWindow; the stale window is zero here.
	assert.Equal(t, 800*time.Second, mr.TTL(key))
}

func TestPutAppliesStaleWindow(t *testing.T) {
	g, mr := newTestGateway(t)
	key := Key("/doc.txt")

	g.Put(context.Background(), key, testObject(), 800, 60)

	assert.Equal(t, 860*time.Second, mr.TTL(key))
}

func TestGetMiss(t *testing.T) {
	g, _ := newTestGateway(t)

	obj, ok := g.Get(context.Background(), Key("/missing.txt"))
	assert.False(t, ok)
	assert.Nil(t, obj)
}

func TestGetStoreFaultDegradesToMiss(t *testing.T) {
	g, mr := newTestGateway(t)
	ctx := context.Background()
	key := Key("/images/logo.png")
	g.Put(ctx, key, testObject(), 800, 0)

	mr.SetError("store unavailable")

	obj, ok := g.Get(ctx, key)
	assert.False(t, ok)
	assert.Nil(t, obj)
}

func TestGetCorruptEntryDegradesToMiss(t *testing.T) {
	g, mr := newTestGateway(t)
	key := Key("/images/logo.png")
	require.NoError(t, mr.Set(key, "not-json"))

	obj, ok := g.Get(context.Background(), key)
	assert.False(t, ok)
	assert.Nil(t, obj)
}

func TestPutStoreFaultIsSwallowed(t *testing.T) {
	g, mr := newTestGateway(t)
	mr.SetError("store unavailable")

	assert.NotPanics(t, func() {
		g.Put(context.Background(), Key("/x"), testObject(), 800, 0)
	})
}

func TestObjectExpires(t *testing.T) {
	g, mr := newTestGateway(t)
	ctx := context.Background()
	key := Key("/short-lived")
	g.Put(ctx, key, testObject(), 10, 0)

	mr.FastForward(11 * time.Second)

	_, ok := g.Get(ctx, key)
	assert.False(t, ok)
}
