package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_AddsContextValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, "production", slog.LevelInfo)

	ctx := context.WithValue(context.Background(), RequestID, "req-1")
	ctx = context.WithValue(ctx, TraceID, "trace-9")
	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"trace_id":"trace-9"`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestEnsureCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := EnsureCorrelationID(context.Background())
	id := ExtractCorrelationID(ctx)
	require.NotEmpty(t, id)
	assert.Len(t, id, 36)

	assert.Equal(t, id, ExtractCorrelationID(EnsureCorrelationID(ctx)))

	fixed := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", ExtractCorrelationID(EnsureCorrelationID(fixed)))
}

func TestRecordValidationFailure(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(ValidationFailures.WithLabelValues("obs_test", "none"))
	RecordValidationFailure("obs_test", "")
	after := testutil.ToFloat64(ValidationFailures.WithLabelValues("obs_test", "none"))
	assert.Equal(t, before+1, after)
}

func TestRecordDangling(t *testing.T) {
	t.Parallel()

	c := DanglingReferences.WithLabelValues("obs_test")
	before := testutil.ToFloat64(c)
	RecordDangling("obs_test", 0)
	RecordDangling("obs_test", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(c))
}

func TestStartSpan_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "inkpost-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "service", "Test")
	require.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}
