package config

import (
	"strconv"
	"time"
)

type PairingConfig interface {
	GetPairingWait() time.Duration
}

type Pairing struct{}

var _ PairingConfig = Pairing{}

const (
	minPairingWaitSeconds     = 10
	maxPairingWaitSeconds     = 90
	defaultPairingWaitSeconds = 30
)

// GetPairingWait returns how long a create-session call blocks waiting for a
// pairing code. Values outside 10-90 seconds are clamped into range.
func (Pairing) GetPairingWait() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("PAIRING_WAIT_SECONDS", ""))
	if err != nil || seconds == 0 {
		seconds = defaultPairingWaitSeconds
	}
	if seconds < minPairingWaitSeconds {
		seconds = minPairingWaitSeconds
	}
	if seconds > maxPairingWaitSeconds {
		seconds = maxPairingWaitSeconds
	}
	return time.Duration(seconds) * time.Second
}
