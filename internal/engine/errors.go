package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/mechanics/internal/ir"
)

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// ErrCodeInvalidInvocation: actor offline, empty item, or a hand-bound
	// trigger fired for an item that is not in hand.
	ErrCodeInvalidInvocation ErrorCode = "INVALID_INVOCATION"

	// ErrCodeUnknownTrigger: the trigger kind is not in the taxonomy.
	ErrCodeUnknownTrigger ErrorCode = "UNKNOWN_TRIGGER"

	// ErrCodeExecutionFailure: an action returned false or panicked.
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"

	// ErrCodeGateDenied: a cooldown, permission or condition gate refused.
	ErrCodeGateDenied ErrorCode = "GATE_DENIED"
)

// Error is a structured pipeline error. It is logged, never returned from
// DetectAndExecute; Outcome.Err exposes it for diagnostics.
type Error struct {
	Code    ErrorCode
	Message string
	ActorID string
	ItemID  string
	Trigger ir.TriggerKind
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.ActorID != "" && e.ItemID != "":
		return fmt.Sprintf("%s: %s (actor=%s, item=%s, trigger=%s)", e.Code, e.Message, e.ActorID, e.ItemID, e.Trigger)
	case e.ActorID != "":
		return fmt.Sprintf("%s: %s (actor=%s)", e.Code, e.Message, e.ActorID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// ErrorCodeOf returns the code of the first *Error in err's chain, or "".
func ErrorCodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsGateDenied reports whether err is a gate denial.
func IsGateDenied(err error) bool {
	return ErrorCodeOf(err) == ErrCodeGateDenied
}

// IsExecutionFailure reports whether err is an action failure.
func IsExecutionFailure(err error) bool {
	return ErrorCodeOf(err) == ErrCodeExecutionFailure
}
