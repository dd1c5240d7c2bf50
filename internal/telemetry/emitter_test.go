package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdko-org/content-gateway/internal/headers"
	"github.com/sdko-org/content-gateway/internal/requestctx"
)

type captureSink struct {
	records [][]byte
	err     error
}

func (s *captureSink) Send(_ context.Context, record []byte) error {
	s.records = append(s.records, record)
	return s.err
}

func testContext() *requestctx.Context {
	h := headers.New()
	h.Set("Accept", "image/png")
	h.Set("User-Agent", "test-agent/1.0")

	return &requestctx.Context{
		Timestamp: time.Date(2024, 5, 10, 12, 30, 45, 0, time.UTC),
		IP:        "203.0.113.7",
		Domain:    "cdn.example.com",
		Path:      "/images/logo.png",
		Method:    "GET",
		Headers:   h,
		UserAgent: "test-agent/1.0",
		Referer:   "https://example.com/page",
		URL:       "http://cdn.example.com/images/logo.png",
	}
}

func newTestEmitter(sink Sink) *Emitter {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEmitter(logger, sink, "content-gateway", "1.0.0")
}

func TestEmitRendersFixedSchema(t *testing.T) {
	sink := &captureSink{}
	e := newTestEmitter(sink)

	originHeaders := headers.New()
	originHeaders.Set("Content-Type", "image/png")

	e.Emit(context.Background(), testContext(), Outcome{
		CacheStatus:   StatusMiss,
		EventType:     EventSuccess,
		ResponseTime:  125 * time.Millisecond,
		OriginHeaders: originHeaders,
	})

	require.Len(t, sink.records, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(sink.records[0], &got))

	want := []string{
		"service", "version", "timestamp", "ip", "domain", "path", "method",
		"userAgent", "referer", "requestHeaders", "requestHeadersJson", "url",
		"cacheStatus", "responseTime", "originResponseHeaders",
		"originResponseHeadersJson", "error", "eventType",
	}
	for _, field := range want {
		assert.Contains(t, got, field)
	}
	assert.Len(t, got, len(want))

	assert.Equal(t, "content-gateway", got["service"])
	assert.Equal(t, "1.0.0", got["version"])
	assert.Equal(t, "2024-05-10T12:30:45Z", got["timestamp"])
	assert.Equal(t, "203.0.113.7", got["ip"])
	assert.Equal(t, "MISS", got["cacheStatus"])
	assert.Equal(t, "success", got["eventType"])
	assert.Equal(t, float64(125), got["responseTime"])
	assert.Equal(t, "https://example.com/page", got["referer"])
	assert.Nil(t, got["error"])
}

func TestEmitDualHeaderRepresentation(t *testing.T) {
	sink := &captureSink{}
	e := newTestEmitter(sink)

	e.Emit(context.Background(), testContext(), Outcome{
		CacheStatus:  StatusHit,
		EventType:    EventCacheHit,
		ResponseTime: 3 * time.Millisecond,
	})

	require.Len(t, sink.records, 1)

	var got struct {
		RequestHeaders     map[string]string `json:"requestHeaders"`
		RequestHeadersJSON string            `json:"requestHeadersJson"`
	}
	require.NoError(t, json.Unmarshal(sink.records[0], &got))

	// The string column decodes to the same mapping as the structured one.
	var fromString map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.RequestHeadersJSON), &fromString))
	assert.Equal(t, got.RequestHeaders, fromString)
	assert.Equal(t, "image/png", fromString["Accept"])
}

func TestEmitHitOmitsOriginHeaders(t *testing.T) {
	sink := &captureSink{}
	e := newTestEmitter(sink)

	e.Emit(context.Background(), testContext(), Outcome{
		CacheStatus:  StatusHit,
		EventType:    EventCacheHit,
		ResponseTime: time.Millisecond,
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(sink.records[0], &got))
	assert.Nil(t, got["originResponseHeaders"])
	assert.Nil(t, got["originResponseHeadersJson"])
}

func TestEmitErrorOutcome(t *testing.T) {
	sink := &captureSink{}
	e := newTestEmitter(sink)

	e.Emit(context.Background(), testContext(), Outcome{
		CacheStatus:  StatusError,
		EventType:    EventError,
		ResponseTime: 8 * time.Millisecond,
		Err:          errors.New("pipeline exploded"),
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(sink.records[0], &got))
	assert.Equal(t, "ERROR", got["cacheStatus"])
	assert.Equal(t, "error", got["eventType"])
	assert.Equal(t, "pipeline exploded", got["error"])
}

func TestEmitNilRefererSerializedAsNull(t *testing.T) {
	sink := &captureSink{}
	e := newTestEmitter(sink)

	rc := testContext()
	rc.Referer = ""
	e.Emit(context.Background(), rc, Outcome{
		CacheStatus:  StatusHit,
		EventType:    EventCacheHit,
		ResponseTime: time.Millisecond,
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(sink.records[0], &got))
	require.Contains(t, got, "referer")
	assert.Nil(t, got["referer"])
}

func TestEmitSwallowsSinkFailure(t *testing.T) {
	sink := &captureSink{err: errors.New("sink unavailable")}
	e := newTestEmitter(sink)

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), testContext(), Outcome{
			CacheStatus:  StatusHit,
			EventType:    EventCacheHit,
			ResponseTime: time.Millisecond,
		})
	})
	assert.Len(t, sink.records, 1)
}

type panicSink struct{}

func (panicSink) Send(context.Context, []byte) error { panic("sink bug") }

func TestEmitSwallowsSinkPanic(t *testing.T) {
	e := newTestEmitter(panicSink{})

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), testContext(), Outcome{
			CacheStatus:  StatusHit,
			EventType:    EventCacheHit,
			ResponseTime: time.Millisecond,
		})
	})
}
