package protocol

import "github.com/cockroachdb/errors"

// Error taxonomy shared across the action-handling boundary. Infra clients
// mark their failures with these sentinels so callers can classify them with
// errors.Is regardless of wrapping.
var (
	// ErrInvalidTarget is returned when an action references a queue
	// position or track ID not present in the current queue.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrNotFound is returned when the catalog cannot resolve an ID.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when a collaborator call failed
	// transiently. It is surfaced, not retried, by the player.
	ErrUnavailable = errors.New("service unavailable")

	// ErrMalformed is returned for action payloads rejected at the
	// transport boundary before reaching the state machine.
	ErrMalformed = errors.New("malformed action")
)
