package models

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = status.Errorf(codes.NotFound, "not found")

// ErrSessionBusy is returned when an event arrives for a session that is
// still processing a previous event. Input is ignored while a gateway
// call is outstanding.
var ErrSessionBusy = errors.New("session is processing another event")

// ErrSessionClosed is returned for events against a session that has
// already reached a terminal state and been torn down.
var ErrSessionClosed = errors.New("session is closed")
