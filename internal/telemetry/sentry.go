// Package telemetry reports searches, provider calls and probe rounds to Sentry.
package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const (
	serviceName  = "justicesearch"
	flushTimeout = 5 * time.Second
)

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// untraced lists request transactions that are never sampled.
var untraced = map[string]bool{
	"GET /health":    true,
	"GET /metrics":   true,
	"GET /providers": true,
}

// Init initializes Sentry and returns a flush function. With no DSN, or a
// DSN Sentry rejects, it returns a no-op and search runs untraced.
func Init(cfg Config, logger *zap.Logger) (func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DSN == "" {
		logger.Debug("sentry disabled: no DSN")
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 0.2
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx.Span, cfg.TracesSampleRate)
		}),
	})
	if err != nil {
		logger.Warn("sentry init failed, continuing without tracing", zap.Error(err))
		return func() {}, nil
	}

	logger.Info("sentry tracing initialized",
		zap.String("environment", cfg.Environment),
		zap.Float64("sample_rate", cfg.TracesSampleRate),
	)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampleRate drops untraced endpoints and makes children follow their parent.
func sampleRate(span *sentry.Span, rate float64) float64 {
	if span == nil {
		return rate
	}
	if untraced[span.Name] {
		return 0
	}
	var root sentry.SpanID
	if span.ParentSpanID != root {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// Outcome is how a traced operation ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeDegraded means the operation succeeded with some providers missing.
	OutcomeDegraded
	OutcomeTimeout
	OutcomeFailed
)

func (o Outcome) status() sentry.SpanStatus {
	switch o {
	case OutcomeDegraded:
		return sentry.SpanStatusUnavailable
	case OutcomeTimeout:
		return sentry.SpanStatusDeadlineExceeded
	case OutcomeFailed:
		return sentry.SpanStatusInternalError
	default:
		return sentry.SpanStatusOK
	}
}

// Span is a traced search, provider call or probe round. The zero value
// and nil are no-ops.
type Span struct {
	inner *sentry.Span
}

// Finish records the outcome and closes the span.
func (s *Span) Finish(o Outcome) {
	if s == nil || s.inner == nil {
		return
	}
	s.inner.Status = o.status()
	s.inner.Finish()
}

// StartSearch opens a span for one search. It nests under the request
// transaction when the context carries one.
func StartSearch(ctx context.Context, searchID, kind, organizationID, intent string) (context.Context, *Span) {
	return start(ctx, "search."+kind, map[string]string{
		"search_id":       searchID,
		"organization_id": organizationID,
		"intent":          intent,
	})
}

// StartProviderCall opens a span for one provider's part of a search.
func StartProviderCall(ctx context.Context, searchID, provider string) (context.Context, *Span) {
	return start(ctx, "provider."+provider, map[string]string{
		"search_id": searchID,
		"provider":  provider,
	})
}

// StartProbe opens a root transaction for one availability probe round.
func StartProbe(ctx context.Context) (context.Context, *Span) {
	span := sentry.StartTransaction(ctx, "provider availability probe", sentry.WithOpName("job"))
	return span.Context(), &Span{inner: span}
}

func start(ctx context.Context, op string, tags map[string]string) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(op)
	} else {
		span = sentry.StartSpan(ctx, op, sentry.WithTransactionName(op))
	}
	for k, v := range tags {
		if v != "" {
			span.SetTag(k, v)
		}
	}
	return span.Context(), &Span{inner: span}
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// ReportProviderFailure sends a provider error to Sentry tagged with the
// provider and its category.
func ReportProviderFailure(ctx context.Context, provider, category string, err error) {
	hub := hubFrom(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("provider", provider)
		if category != "" {
			scope.SetTag("category", category)
		}
		hub.CaptureException(err)
	})
}

// RecordDegraded leaves a breadcrumb naming the providers a search went without.
func RecordDegraded(ctx context.Context, searchID string, failed []string) {
	hubFrom(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "default",
		Category:  "search",
		Message:   "search " + searchID + " degraded: " + strings.Join(failed, ", "),
		Level:     sentry.LevelWarning,
		Timestamp: time.Now(),
	}, nil)
}
