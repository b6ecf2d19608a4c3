package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		Factor:    2.0,
	}
}

func TestDoValSucceedsAfterRetries(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", MarkTransient(eris.New("upstream flake"), 503)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, MarkTransient(eris.New("still down"), 500)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
		calls++
		cancel()
		return MarkTransient(eris.New("flake"), 503)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoCustomRetryable(t *testing.T) {
	p := fastPolicy()
	p.Retryable = func(err error) bool { return false }

	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return MarkTransient(eris.New("flake"), 503)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDelayCapped(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 2 * time.Second, Factor: 10, Attempts: 5}.withDefaults()
	assert.LessOrEqual(t, p.delay(4), 2*time.Second)
}
