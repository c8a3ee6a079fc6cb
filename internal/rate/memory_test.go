package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_BlocksAfterMax(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "ip:1")
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i+1)
	}
	res, err := l.Allow(ctx, "ip:1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Greater(t, res.RetryAfter, time.Duration(0))

	// otra key tiene su propio bucket
	res, err = l.Allow(ctx, "ip:2")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
