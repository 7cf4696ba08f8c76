package client

// Status is the connection lifecycle as seen by consumers. Reconnecting
// means an abnormal close was detected and a backoff timer is pending;
// Connecting covers both the first dial and each retry attempt.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
)
