package resilience

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"marked transient", MarkTransient(eris.New("rate limited"), 429), true},
		{"wrapped transient", eris.Wrap(MarkTransient(eris.New("down"), 503), "reverb: search"), true},
		{"plain error", eris.New("invalid filter"), false},
		{"string timeout", eris.New("dial tcp: i/o timeout"), true},
		{"connection reset", eris.New("read: connection reset by peer"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, RetryableStatus(429))
	assert.True(t, RetryableStatus(503))
	assert.False(t, RetryableStatus(404))
	assert.False(t, RetryableStatus(200))
}
