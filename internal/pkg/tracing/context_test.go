package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID_ContextRoundtrip(t *testing.T) {
	id := GenerateTraceID()
	ctx := WithTraceID(context.Background(), id)

	assert.Equal(t, id, TraceIDFromContext(ctx))
}

func TestTraceIDFromContext_Unset(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestTraceIDFromContext_NilContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(nil)) //nolint:staticcheck // проверка nil-safety
}

func TestWithTraceID_Overwrite(t *testing.T) {
	ctx := WithTraceID(context.Background(), "первый")
	ctx = WithTraceID(ctx, "второй")

	assert.Equal(t, "второй", TraceIDFromContext(ctx))
}

func TestWithTraceID_PreservesOtherValues(t *testing.T) {
	type otherKey struct{}
	ctx := context.WithValue(context.Background(), otherKey{}, "report")
	ctx = WithTraceID(ctx, "abc")

	assert.Equal(t, "report", ctx.Value(otherKey{}))
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
}
