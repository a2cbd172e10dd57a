package tracker

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
)

// ErrProtocol is wrapped by every ProtocolError
var ErrProtocol = errors.New("protocol error")

// TypeSessionEnd marks the protocol error recorded when nodes are still
// open as the session ends
const TypeSessionEnd event.Type = "session_end"

// ProtocolError describes a lifecycle event that does not fit the active
// path. The tracker recovers from all of them.
type ProtocolError struct {
	Event  event.Type
	Top    string // name of the stack top, empty when the stack was empty
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Top == "" {
		return fmt.Sprintf("%s: %s: %s", ErrProtocol, e.Event, e.Reason)
	}
	return fmt.Sprintf("%s: %s (top %q): %s", ErrProtocol, e.Event, e.Top, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}
