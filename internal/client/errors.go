package client

import "errors"

var (
	ErrAlreadyConnected = errors.New("already_connected")
	ErrClientClosed     = errors.New("client_closed")
	ErrBadEndpoint      = errors.New("bad_endpoint")
)
