package telemetry

import (
	"time"

	"github.com/sdko-org/content-gateway/internal/headers"
)

type CacheStatus string

const (
	StatusHit   CacheStatus = "HIT"
	StatusMiss  CacheStatus = "MISS"
	StatusError CacheStatus = "ERROR"
)

type EventType string

const (
	EventCacheHit    EventType = "cache_hit"
	EventSuccess     EventType = "success"
	EventOriginError EventType = "origin_error"
	EventError       EventType = "error"
)

// Event is the fixed telemetry record schema. Field names are part of the
// sink contract and must not change. Header mappings appear twice: once
// structured and once as a JSON string, for consumers preferring either
// flattened or string columns.
type Event struct {
	Service                   string       `json:"service"`
	Version                   string       `json:"version"`
	Timestamp                 string       `json:"timestamp"`
	IP                        string       `json:"ip"`
	Domain                    string       `json:"domain"`
	Path                      string       `json:"path"`
	Method                    string       `json:"method"`
	UserAgent                 string       `json:"userAgent"`
	Referer                   *string      `json:"referer"`
	RequestHeaders            *headers.Map `json:"requestHeaders"`
	RequestHeadersJSON        string       `json:"requestHeadersJson"`
	URL                       string       `json:"url"`
	CacheStatus               CacheStatus  `json:"cacheStatus"`
	ResponseTime              int64        `json:"responseTime"`
	OriginResponseHeaders     *headers.Map `json:"originResponseHeaders"`
	OriginResponseHeadersJSON *string      `json:"originResponseHeadersJson"`
	Error                     *string      `json:"error"`
	EventType                 EventType    `json:"eventType"`
}

// Outcome carries the result fields the orchestrator knows once a request
// has reached a terminal state.
type Outcome struct {
	CacheStatus   CacheStatus
	EventType     EventType
	ResponseTime  time.Duration
	OriginHeaders *headers.Map
	Err           error
}
