package imports

import (
	"context"
	"testing"
	"time"

	"club-import/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_Delay(t *testing.T) {
	p := ExponentialBackoff{Base: 100 * time.Millisecond, Max: time.Second, Factor: 2}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, time.Second, p.Delay(10))
	assert.Equal(t, time.Second, p.Delay(200))
}

func TestExponentialBackoff_DefaultFactor(t *testing.T) {
	p := ExponentialBackoff{Base: 10 * time.Millisecond}
	assert.Equal(t, 40*time.Millisecond, p.Delay(3))
}

func TestExponentialBackoff_NoMaxNeverOverflows(t *testing.T) {
	p := ExponentialBackoff{Base: 300 * time.Millisecond, Factor: 2}

	for _, n := range []int{40, 64, 2000, 1 << 20} {
		d := p.Delay(n)
		assert.Positive(t, d, "batch %d", n)
		assert.LessOrEqual(t, d, time.Hour, "batch %d", n)
	}
}

func TestFixedDelay_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := FixedDelay{Delay: time.Minute}.Wait(ctx, 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFixedDelay_Waits(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay{Delay: 20 * time.Millisecond}.Wait(context.Background(), 1))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNoDelay(t *testing.T) {
	assert.NoError(t, NoDelay{}.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NoDelay{}.Wait(ctx, 1), context.Canceled)
}

func TestTokenBucket_Wait(t *testing.T) {
	p := NewTokenBucket(1000, 1)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Wait(ctx, i))
	}
}

func TestNewPacer(t *testing.T) {
	opts := common.BatchOptions{BatchSize: 3, Delay: 300 * time.Millisecond, MaxDelay: time.Second, RatePerSecond: 2}

	opts.Pacing = common.PacingNone
	assert.IsType(t, NoDelay{}, NewPacer(opts))

	opts.Pacing = common.PacingFixed
	assert.Equal(t, FixedDelay{Delay: 300 * time.Millisecond}, NewPacer(opts))

	opts.Pacing = common.PacingBackoff
	assert.Equal(t, ExponentialBackoff{Base: 300 * time.Millisecond, Max: time.Second, Factor: 2}, NewPacer(opts))

	opts.Pacing = common.PacingTokenBucket
	assert.IsType(t, &TokenBucket{}, NewPacer(opts))
}
