package origin

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/sdko-org/content-gateway/internal/config"
	"github.com/sdko-org/content-gateway/internal/headers"
	"github.com/sdko-org/content-gateway/internal/metrics"
)

// Fetcher retrieves objects from the S3 origin. It never retries: retry
// policy belongs to the surrounding platform, so SDK retries are pinned to
// zero.
type Fetcher struct {
	client *s3.S3
	bucket string
	log    *logrus.Entry
}

func NewFetcher(logger *logrus.Logger, cfg *config.Config) *Fetcher {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.S3Region),
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
		MaxRetries:       aws.Int(0),
		// Keys map 1:1 from request paths; the SDK must not path-clean them.
		DisableRestProtocolURICleaning: aws.Bool(true),
	}

	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess := session.Must(session.NewSession(awsConfig))

	return &Fetcher{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
		log:    logger.WithField("component", "origin_fetcher"),
	}
}

// Fetch retrieves the object named by the request path. A single leading
// slash is stripped to form the object key.
func (f *Fetcher) Fetch(ctx context.Context, path string) Result {
	key := strings.TrimPrefix(path, "/")
	start := time.Now()

	out, err := f.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	metrics.OriginFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok {
			metrics.OriginFetches.WithLabelValues("failure").Inc()
			f.log.WithFields(logrus.Fields{"key": key, "status": reqErr.StatusCode()}).Info("Origin returned non-success status")
			return Failure{Status: reqErr.StatusCode()}
		}
		metrics.OriginFetches.WithLabelValues("transport_error").Inc()
		f.log.WithFields(logrus.Fields{"key": key, "error": err}).Error("Origin fetch failed")
		return TransportError{Cause: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.OriginFetches.WithLabelValues("transport_error").Inc()
		f.log.WithFields(logrus.Fields{"key": key, "error": err}).Error("Origin body read failed")
		return TransportError{Cause: err}
	}

	metrics.OriginFetches.WithLabelValues("success").Inc()
	return Success{
		Status:  http.StatusOK,
		Body:    body,
		Headers: responseHeaders(out),
	}
}

// responseHeaders synthesizes HTTP-style origin headers from the S3 output.
func responseHeaders(out *s3.GetObjectOutput) *headers.Map {
	h := headers.New()
	if out.ContentType != nil {
		h.Set("Content-Type", *out.ContentType)
	}
	if out.ContentLength != nil {
		h.Set("Content-Length", strconv.FormatInt(*out.ContentLength, 10))
	}
	if out.ETag != nil {
		h.Set("ETag", *out.ETag)
	}
	if out.LastModified != nil {
		h.Set("Last-Modified", out.LastModified.UTC().Format(http.TimeFormat))
	}
	if out.CacheControl != nil {
		h.Set("Cache-Control", *out.CacheControl)
	}

	names := make([]string, 0, len(out.Metadata))
	for name := range out.Metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Set("x-amz-meta-"+strings.ToLower(name), aws.StringValue(out.Metadata[name]))
	}
	return h
}
