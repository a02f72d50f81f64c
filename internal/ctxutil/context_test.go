package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := GetRequestID(ctx)
	assert.False(t, ok)

	ctx = WithRequestID(ctx, "req-123")
	id, ok := GetRequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-123", id)
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	t.Parallel()

	base := context.Background()
	assert.Equal(t, base, WithClientIP(base, ""))
	assert.Equal(t, base, WithUserID(base, ""))
}

func TestValues(t *testing.T) {
	t.Parallel()

	ctx := WithClientIP(context.Background(), "10.0.0.1")
	ctx = WithUserID(ctx, "U123")
	ctx = WithStrategy(ctx, "lexical")

	assert.Equal(t, "10.0.0.1", GetClientIP(ctx))
	assert.Equal(t, "U123", GetUserID(ctx))
	assert.Equal(t, "lexical", GetStrategy(ctx))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestNilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // exercising nil tolerance
	assert.Empty(t, GetClientIP(nil))
}
