package tracing

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestHelpersWithoutTracer(t *testing.T) {
	SetTracer(nil)
	ctx := context.Background()

	spanCtx, span := StartSpan(ctx, "resolution.Engine.Resolve")
	assert.Equal(t, ctx, spanCtx)
	assert.NotNil(t, span)

	assert.Nil(t, GetActiveSpan(ctx))
	assert.Equal(t, "", GetTraceID(ctx))
	assert.Equal(t, "", GetSpanID(ctx))
	assert.Equal(t, "", GetTraceParent(ctx))

	// Attribute and error recording are no-ops without an active span
	AddSpanAttributes(ctx, attribute.Int("resolution.orders", 3))
	RecordError(ctx, errors.New("boom"))
	RecordError(ctx, nil)
}
