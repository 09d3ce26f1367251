// Package trace instruments outbound HTTP calls to the remote data service:
// every request carries a request id, gets a client span and is logged on
// completion.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the request id to the server.
	HeaderRequestID = "X-Request-Id"
)

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests  int64
	FailedRequests int64
	LastDuration   int64 // in microseconds
}

// Transport wraps a RoundTripper with request ids, spans and logging.
type Transport struct {
	base   http.RoundTripper
	tracer oteltrace.Tracer

	total  atomic.Int64
	failed atomic.Int64
	last   atomic.Int64
}

// NewTransport wraps base; nil means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:   base,
		tracer: otel.Tracer("expensesync/internal/middleware/trace"),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := GetRequestID(req.Context())
	if requestID == "" {
		requestID = GenerateRequestID()
	}

	ctx, span := t.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
			attribute.String("request_id", requestID),
		))
	defer span.End()

	out := req.Clone(context.WithValue(ctx, RequestIDKey, requestID))
	out.Header.Set(HeaderRequestID, requestID)

	t.total.Add(1)
	resp, err := t.base.RoundTrip(out)
	duration := time.Since(start)
	t.last.Store(duration.Microseconds())

	if err != nil {
		t.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "HTTP request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	// Use appropriate log level based on status code
	logLevel := slog.LevelDebug
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		logLevel = slog.LevelWarn
	} else if resp.StatusCode >= 500 {
		logLevel = slog.LevelError
	}
	if resp.StatusCode >= 400 {
		t.failed.Add(1)
		span.SetStatus(codes.Error, resp.Status)
	}

	slog.Log(ctx, logLevel, "HTTP request completed",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"success", resp.StatusCode < 400)

	return resp, nil
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// WithRequestID makes outbound calls made with ctx reuse id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Metrics returns current metrics
func (t *Transport) Metrics() Metrics {
	return Metrics{
		TotalRequests:  t.total.Load(),
		FailedRequests: t.failed.Load(),
		LastDuration:   t.last.Load(),
	}
}
