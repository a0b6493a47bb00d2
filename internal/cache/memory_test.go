package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	_, err := m.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "cart", "[]"))
	v, err := m.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, m.Delete(ctx, "cart"))
	_, err = m.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
