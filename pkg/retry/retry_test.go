package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := None(5).Run(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	calls := 0
	err := None(3).Run(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("still failing")
	})
	assert.EqualError(t, err, "still failing")
	assert.Equal(t, 3, calls)
}

func TestRunSucceedsMidway(t *testing.T) {
	calls := 0
	err := None(5).Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestAbortShortCircuitsRemainingAttempts(t *testing.T) {
	terminal := errors.New("terminal")
	calls := 0
	err := None(5).Run(context.Background(), func(ctx context.Context) error {
		calls++
		return Abort(terminal)
	})
	assert.Equal(t, terminal, err)
	assert.Equal(t, 1, calls)
}

func TestAbortedErrorSurvivesErrorsIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := None(2).Run(context.Background(), func(ctx context.Context) error {
		return Abort(sentinel)
	})
	assert.True(t, errors.Is(err, sentinel))
}

func TestRunStopsWaitingWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Fixed(3, time.Minute).Run(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})
	assert.EqualError(t, err, "transient")
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestZeroMaxAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestLinearDelayGrowsPerAttempt(t *testing.T) {
	policy := Linear(4, 500*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, policy.Delay(1))
	assert.Equal(t, time.Second, policy.Delay(2))
	assert.Equal(t, 1500*time.Millisecond, policy.Delay(3))
}

func TestFixedDelayIsConstant(t *testing.T) {
	policy := Fixed(6, 3*time.Second)
	assert.Equal(t, 3*time.Second, policy.Delay(1))
	assert.Equal(t, 3*time.Second, policy.Delay(5))
}
