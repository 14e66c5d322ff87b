package payment

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownGateway is returned by the factory for an unregistered name.
var ErrUnknownGateway = errors.New("payment: unknown gateway")

// SessionError is a gateway rejection: the remote call completed but the
// gateway declined to open a session. Payload carries the gateway's
// diagnostic response for persistence on the failed order.
type SessionError struct {
	StatusCode int
	Message    string
	Payload    json.RawMessage
}

func (e *SessionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment: session rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment: session rejected (%d)", e.StatusCode)
}
