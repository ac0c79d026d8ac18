package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegistry_TrackRelease(t *testing.T) {
	r := New(zaptest.NewLogger(t))

	require.NoError(t, r.Track("a", "album"))
	require.NoError(t, r.Track("b", "album"))
	assert.Equal(t, 2, r.Active())

	assert.ErrorIs(t, r.Track("a", "album"), ErrJobExists)
	assert.ErrorIs(t, r.Track("", "album"), ErrJobIDEmpty)

	require.NoError(t, r.Release("a"))
	assert.ErrorIs(t, r.Release("a"), ErrJobNotFound)
	assert.ErrorIs(t, r.Release(""), ErrJobIDEmpty)
	assert.Equal(t, 1, r.Active())
}

func TestRegistry_WaitEmpty(t *testing.T) {
	r := New(zaptest.NewLogger(t))

	assert.NoError(t, r.Wait(context.Background()))
}

func TestRegistry_WaitDrained(t *testing.T) {
	r := New(zaptest.NewLogger(t))
	require.NoError(t, r.Track("a", "album"))

	go func() {
		time.Sleep(20 * time.Millisecond)
		r.Release("a")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, r.Wait(ctx))
	assert.Equal(t, 0, r.Active())
}

func TestRegistry_WaitTimeout(t *testing.T) {
	r := New(zaptest.NewLogger(t))
	require.NoError(t, r.Track("a", "album"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), ErrContextDone)
}

func TestRegistry_RefillAfterDrain(t *testing.T) {
	r := New(zaptest.NewLogger(t))
	require.NoError(t, r.Track("a", "album"))
	require.NoError(t, r.Release("a"))
	require.NoError(t, r.Track("b", "album"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), ErrContextDone)
}
