package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func recordingPolicy(attempts int, base time.Duration, slept *[]time.Duration) Policy {
	p := NewPolicy(attempts, base)
	p.onDelay = func(d time.Duration) {
		*slept = append(*slept, d)
	}
	return p
}

func Test_Policy_WhenAlwaysFailing_ShouldBackOffExponentially(t *testing.T) {

	assert := assert.New(t)
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(4, time.Millisecond, &slept).Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(errTransient, err)
	assert.Equal(4, calls)
	assert.Equal([]time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, slept)
	for i := 1; i < len(slept); i++ {
		assert.GreaterOrEqual(slept[i], slept[i-1])
	}
}

func Test_Policy_WhenSucceedsLater_ShouldStop(t *testing.T) {

	assert := assert.New(t)
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(5, time.Millisecond, &slept).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(err)
	assert.Equal(3, calls)
	assert.Len(slept, 2)
}

func Test_Policy_WhenRateLimited_ShouldWaitRetryAfterVerbatim(t *testing.T) {

	assert := assert.New(t)
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(3, time.Hour, &slept).Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return RateLimited(errTransient, 5*time.Millisecond)
		}
		return nil
	})

	assert.NoError(err)
	assert.Equal(2, calls)
	assert.Equal([]time.Duration{5 * time.Millisecond}, slept)
}

func Test_Policy_WhenPermanent_ShouldNotRetry(t *testing.T) {

	assert := assert.New(t)
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(3, time.Second, &slept).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errTransient)
	})

	assert.Equal(errTransient, err)
	assert.Equal(1, calls)
	assert.Empty(slept)
}

func Test_Policy_WhenContextCancelled_ShouldReturnContextError(t *testing.T) {

	assert := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := NewPolicy(5, time.Hour).Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errTransient
	})

	assert.ErrorIs(err, context.Canceled)
	assert.Equal(1, calls)
}

func Test_RetryAfter_ShouldExposeHint(t *testing.T) {

	assert := assert.New(t)

	after, ok := RetryAfter(RateLimited(errTransient, 3*time.Second))
	assert.True(ok)
	assert.Equal(3*time.Second, after)

	_, ok = RetryAfter(errTransient)
	assert.False(ok)
	assert.Nil(Permanent(nil))
}

func Test_Policy_Delay_ShouldDoublePerAttempt(t *testing.T) {

	assert := assert.New(t)
	p := NewPolicy(3, 250*time.Millisecond)

	assert.Equal(250*time.Millisecond, p.Delay(0))
	assert.Equal(500*time.Millisecond, p.Delay(1))
	assert.Equal(time.Second, p.Delay(2))
}
