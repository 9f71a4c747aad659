package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiCompleter_ClientPerKey(t *testing.T) {
	g := NewGeminiCompleter()
	ctx := context.Background()

	first, err := g.client(ctx, "key-one")
	require.NoError(t, err)
	again, err := g.client(ctx, "key-one")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := g.client(ctx, "key-two")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Len(t, g.clients, 2)

	g.Close()
	assert.Empty(t, g.clients)
}
