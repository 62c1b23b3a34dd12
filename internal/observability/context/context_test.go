package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityFromRoute(t *testing.T) {
	assert.Equal(t, "farmers", EntityFromRoute("/api/farmers/:id/dues"))
	assert.Equal(t, "stock-register", EntityFromRoute("/api/stock-register"))
	assert.Equal(t, "undo", EntityFromRoute("/api/undo"))
	assert.Equal(t, "system", EntityFromRoute("/health"))
	assert.Equal(t, "system", EntityFromRoute(""))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(WithRequestID(context.Background(), "")))
}
