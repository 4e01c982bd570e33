package messaging

// ReasonCode accompanies a Closed event and indicates why the connection
// dropped. The values mirror the network's own disconnect status codes.
type ReasonCode int

const (
	ReasonUnknown            ReasonCode = 0
	ReasonLoggedOut          ReasonCode = 401
	ReasonConnectionLost     ReasonCode = 408
	ReasonConnectionClosed   ReasonCode = 428
	ReasonConnectionReplaced ReasonCode = 440
	ReasonBadSession         ReasonCode = 500
	ReasonRestartRequired    ReasonCode = 515
)

// Terminal reports whether the session must not be reconnected. Only an
// explicit logout is terminal; every other reason, including unknown causes,
// is treated as retryable.
func (r ReasonCode) Terminal() bool {
	return r == ReasonLoggedOut
}
