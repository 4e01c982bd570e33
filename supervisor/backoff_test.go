package supervisor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatbridge/go-wa-gateway/supervisor"
)

func TestNextBackoffDelay(t *testing.T) {
	cfg := supervisor.BackoffConfig{
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "first attempt uses the initial delay", attempt: 1, want: 2 * time.Second},
		{name: "second attempt doubles", attempt: 2, want: 4 * time.Second},
		{name: "third attempt doubles again", attempt: 3, want: 8 * time.Second},
		{name: "large attempts are capped", attempt: 20, want: 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, supervisor.NextBackoffDelay(cfg, tt.attempt))
		})
	}
}

func TestNextBackoffDelayZeroInitial(t *testing.T) {
	cfg := supervisor.BackoffConfig{Multiplier: 2.0}
	require.Equal(t, time.Duration(0), supervisor.NextBackoffDelay(cfg, 5))
}

func TestNextBackoffDelayJitterStaysBounded(t *testing.T) {
	cfg := supervisor.BackoffConfig{
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		Jitter:       true,
	}

	for i := 0; i < 100; i++ {
		delay := supervisor.NextBackoffDelay(cfg, 3)
		require.GreaterOrEqual(t, delay, 2*time.Second, "jitter floor is half the raw delay")
		require.LessOrEqual(t, delay, 6*time.Second, "jitter ceiling is 1.5x the raw delay")
	}
}

func TestNextBackoffDelaySubUnityMultiplier(t *testing.T) {
	cfg := supervisor.BackoffConfig{InitialDelay: time.Second, Multiplier: 0.5}
	require.Equal(t, time.Second, supervisor.NextBackoffDelay(cfg, 4), "multiplier below 1 is treated as 1")
}
