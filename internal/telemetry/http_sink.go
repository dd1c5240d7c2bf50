package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPSink posts each record to the analytics collector endpoint.
type HTTPSink struct {
	httpClient *http.Client
	url        string
	log        *logrus.Entry
}

func NewHTTPSink(logger *logrus.Logger, url string) *HTTPSink {
	return &HTTPSink{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
		log:        logger.WithField("component", "telemetry_http_sink"),
	}
}

func (s *HTTPSink) Send(ctx context.Context, record []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(record))
	if err != nil {
		return fmt.Errorf("build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sink request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink rejected record with status %d", resp.StatusCode)
	}
	return nil
}
