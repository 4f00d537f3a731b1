package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewClient(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Minute), mr
}

func TestBeginCompleteReplay(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	key := Key(KeyOrderPlace, "acc-1", "abc")
	assert.Equal(t, "idem:order:place:acc-1:abc", key)

	_, started, err := s.Begin(ctx, key)
	require.NoError(t, err)
	assert.True(t, started)

	existing, started, err := s.Begin(ctx, key)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, Pending, existing)

	require.NoError(t, s.Complete(ctx, key, "order-1"))
	existing, started, err = s.Begin(ctx, key)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, "order-1", existing)
}

func TestAbortReleasesClaim(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	key := Key(KeyCartCheckout, "acc-1", "k")

	_, started, err := s.Begin(ctx, key)
	require.NoError(t, err)
	require.True(t, started)

	require.NoError(t, s.Abort(ctx, key))
	_, started, err = s.Begin(ctx, key)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestClaimExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	key := Key(KeyOrderPlace, "acc-2", "k")

	_, started, err := s.Begin(ctx, key)
	require.NoError(t, err)
	require.True(t, started)

	mr.FastForward(2 * time.Minute)
	_, started, err = s.Begin(ctx, key)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestRedisDown(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, s.Ping(context.Background()))
	mr.Close()

	_, _, err := s.Begin(context.Background(), "k")
	assert.Error(t, err)
}
