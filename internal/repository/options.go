package repository

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"expensesync/internal/log"
)

const tracerName = "expensesync/internal/repository"

type settings struct {
	now    func() time.Time
	newID  func() string
	tracer trace.Tracer
	logger *log.Logger
}

type Option func(*settings)

// WithClock overrides the time source used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDGenerator overrides uuid generation for new rows.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) { s.newID = newID }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func newSettings(opts []Option) settings {
	s := settings{
		now:    time.Now,
		newID:  uuid.NewString,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.FromDefault(log.ComponentSync)
	}
	return s
}

func (s settings) nowMillis() int64 { return s.now().UnixMilli() }
