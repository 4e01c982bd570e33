package config

import (
	"strconv"
	"time"
)

type ReconnectConfig interface {
	GetReconnectInitialDelay() time.Duration
	GetReconnectMaxDelay() time.Duration
	GetReconnectMultiplier() float64
	GetReconnectMaxAttempts() int
}

type Reconnect struct{}

var _ ReconnectConfig = Reconnect{}

func (Reconnect) GetReconnectInitialDelay() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("RECONNECT_INITIAL_DELAY_SECONDS", "2"))
	if err != nil || seconds <= 0 {
		seconds = 2
	}
	return time.Duration(seconds) * time.Second
}

func (Reconnect) GetReconnectMaxDelay() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("RECONNECT_MAX_DELAY_SECONDS", "60"))
	if err != nil || seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func (Reconnect) GetReconnectMultiplier() float64 {
	multiplier, err := strconv.ParseFloat(GetEnv("RECONNECT_MULTIPLIER", "2.0"), 64)
	if err != nil || multiplier < 1.0 {
		multiplier = 2.0
	}
	return multiplier
}

// GetReconnectMaxAttempts caps consecutive failed reconnect attempts before a
// session is closed for good. Zero or negative means retry forever.
func (Reconnect) GetReconnectMaxAttempts() int {
	attempts, err := strconv.Atoi(GetEnv("RECONNECT_MAX_ATTEMPTS", "10"))
	if err != nil {
		attempts = 10
	}
	return attempts
}
