package session

import (
	"errors"
	"fmt"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// Session errors.
var (
	// ErrAlreadyRunning is returned by Start when the session is running.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrNotRunning is returned by operations that need a running session.
	ErrNotRunning = errors.New("session not running")

	// ErrAckTimeout indicates no delivery acknowledgement arrived in time.
	ErrAckTimeout = errors.New("timed out waiting for acknowledgement")

	// ErrResponseTimeout indicates the acknowledgement arrived (or was not
	// requested) but the application response did not.
	ErrResponseTimeout = errors.New("timed out waiting for response")

	// ErrUnknownDestination indicates a message destination that could not
	// be resolved against the node store.
	ErrUnknownDestination = errors.New("unknown destination")

	// ErrUnknownChannel indicates a channel name or index not present in
	// the local channel table.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrChannelDisabled indicates a send was addressed to a disabled
	// channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrUnexpectedResponse indicates a correlated reply whose payload did
	// not match the request.
	ErrUnexpectedResponse = errors.New("unexpected response payload")
)

// RoutingError is returned when the mesh reports a delivery failure for a
// sent packet.
type RoutingError struct {
	// Reason is the device-reported failure reason.
	Reason mesh.RoutingError
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing failed: %s", e.Reason)
}
