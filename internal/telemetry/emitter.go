package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdko-org/content-gateway/internal/metrics"
	"github.com/sdko-org/content-gateway/internal/requestctx"
)

// Sink accepts one serialized record per call. Delivery durability is the
// sink's problem, not the emitter's.
type Sink interface {
	Send(ctx context.Context, record []byte) error
}

// Emitter renders telemetry events and hands them to the analytics sink.
// It never fails: serialization and delivery faults are logged locally and
// swallowed so a telemetry problem can never alter a request's outcome.
type Emitter struct {
	sink    Sink
	log     *logrus.Entry
	service string
	version string
}

func NewEmitter(logger *logrus.Logger, sink Sink, service, version string) *Emitter {
	return &Emitter{
		sink:    sink,
		log:     logger.WithField("component", "telemetry_emitter"),
		service: service,
		version: version,
	}
}

// Emit builds and delivers exactly one record for the request.
func (e *Emitter) Emit(ctx context.Context, rc *requestctx.Context, out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TelemetryFailures.Inc()
			e.log.WithField("panic", r).Error("Telemetry emission panicked")
		}
	}()

	event := e.buildEvent(rc, out)

	record, err := json.Marshal(event)
	if err != nil {
		metrics.TelemetryFailures.Inc()
		e.log.WithError(err).Error("Failed to serialize telemetry event")
		return
	}

	if err := e.sink.Send(ctx, record); err != nil {
		metrics.TelemetryFailures.Inc()
		e.log.WithError(err).Warn("Failed to deliver telemetry record")
	}
}

func (e *Emitter) buildEvent(rc *requestctx.Context, out Outcome) Event {
	event := Event{
		Service:            e.service,
		Version:            e.version,
		Timestamp:          rc.Timestamp.UTC().Format(time.RFC3339),
		IP:                 rc.IP,
		Domain:             rc.Domain,
		Path:               rc.Path,
		Method:             rc.Method,
		UserAgent:          rc.UserAgent,
		RequestHeaders:     rc.Headers,
		RequestHeadersJSON: headersJSON(rc.Headers),
		URL:                rc.URL,
		CacheStatus:        out.CacheStatus,
		ResponseTime:       out.ResponseTime.Milliseconds(),
		EventType:          out.EventType,
	}

	if rc.Referer != "" {
		referer := rc.Referer
		event.Referer = &referer
	}
	if out.OriginHeaders != nil {
		event.OriginResponseHeaders = out.OriginHeaders
		originJSON := headersJSON(out.OriginHeaders)
		event.OriginResponseHeadersJSON = &originJSON
	}
	if out.Err != nil {
		msg := out.Err.Error()
		event.Error = &msg
	}
	return event
}

func headersJSON(m json.Marshaler) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
