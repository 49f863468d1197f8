package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestSampleRate(t *testing.T) {
	assert.Equal(t, 0.3, sampleRate(nil, 0.3))
	assert.Equal(t, 0.0, sampleRate(&sentry.Span{Name: "GET /health"}, 0.3))
	assert.Equal(t, 0.0, sampleRate(&sentry.Span{Name: "GET /metrics"}, 0.3))
	assert.Equal(t, 0.3, sampleRate(&sentry.Span{Name: "GET /search"}, 0.3))

	child := &sentry.Span{Name: "provider.internal", ParentSpanID: sentry.SpanID{1}, Sampled: sentry.SampledTrue}
	assert.Equal(t, 1.0, sampleRate(child, 0.3))
	child.Sampled = sentry.SampledFalse
	assert.Equal(t, 0.0, sampleRate(child, 0.3))
}

func TestStartProviderCall_NestsUnderSearch(t *testing.T) {
	ctx, search := StartSearch(context.Background(), "s-1", "search", "", "find_program")
	searchSpan := sentry.SpanFromContext(ctx)
	require.NotNil(t, searchSpan)
	assert.Equal(t, "find_program", searchSpan.Tags["intent"])
	_, hasOrg := searchSpan.Tags["organization_id"]
	assert.False(t, hasOrg)

	childCtx, call := StartProviderCall(ctx, "s-1", "internal")
	span := sentry.SpanFromContext(childCtx)
	require.NotNil(t, span)
	assert.Equal(t, "internal", span.Tags["provider"])
	assert.Equal(t, "s-1", span.Tags["search_id"])
	assert.Equal(t, searchSpan.SpanID, span.ParentSpanID)

	call.Finish(OutcomeTimeout)
	search.Finish(OutcomeDegraded)
	assert.Equal(t, sentry.SpanStatusDeadlineExceeded, span.Status)
	assert.Equal(t, sentry.SpanStatusUnavailable, searchSpan.Status)
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusOK, OutcomeOK.status())
	assert.Equal(t, sentry.SpanStatusUnavailable, OutcomeDegraded.status())
	assert.Equal(t, sentry.SpanStatusDeadlineExceeded, OutcomeTimeout.status())
	assert.Equal(t, sentry.SpanStatusInternalError, OutcomeFailed.status())
}

func TestSpan_NilSafe(t *testing.T) {
	var s *Span
	s.Finish(OutcomeFailed)
	(&Span{}).Finish(OutcomeOK)
}

func TestReporting_WithoutClient(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		ReportProviderFailure(ctx, "media_hub", "Media & stories", errors.New("502"))
		RecordDegraded(ctx, "s-1", []string{"media_hub"})
	})
}
