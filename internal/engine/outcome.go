package engine

import "github.com/roach88/mechanics/internal/ir"

// Stage is where an invocation stopped.
type Stage string

const (
	StageInvalid    Stage = "invalid"
	StageUnresolved Stage = "unresolved"
	StageNoTrigger  Stage = "no_trigger"
	StageCooldown   Stage = "cooldown"
	StagePermission Stage = "permission"
	StageActions    Stage = "actions"
)

// Outcome describes one pipeline run.
type Outcome struct {
	// ID and Seq are set only when the run reached the action stage.
	ID  string `json:"id,omitempty"`
	Seq int64  `json:"seq,omitempty"`

	ActorID string         `json:"actor_id"`
	ItemID  string         `json:"item_id,omitempty"`
	Trigger ir.TriggerKind `json:"trigger"`

	Stage    Stage  `json:"stage"`
	Reason   string `json:"reason,omitempty"`
	Executed bool   `json:"executed"`

	// Dispatched lists the action kinds run or scheduled, in order.
	Dispatched []string `json:"dispatched,omitempty"`
	Scheduled  int      `json:"scheduled,omitempty"`
	Skipped    int      `json:"skipped,omitempty"`
	Failed     int      `json:"failed,omitempty"`

	// Remaining is the cooldown left, in seconds, when Stage is
	// StageCooldown.
	Remaining int64 `json:"remaining,omitempty"`

	Consumed bool `json:"consumed,omitempty"`
}

// Err returns the structured error for outcomes that represent a denial or
// a failure, and nil for clean runs and silent no-ops.
func (o Outcome) Err() error {
	mk := func(code ErrorCode, msg string) error {
		return &Error{Code: code, Message: msg, ActorID: o.ActorID, ItemID: o.ItemID, Trigger: o.Trigger}
	}
	switch o.Stage {
	case StageInvalid:
		if o.Reason == reasonUnknownTrigger {
			return mk(ErrCodeUnknownTrigger, o.Reason)
		}
		return mk(ErrCodeInvalidInvocation, o.Reason)
	case StageCooldown, StagePermission:
		return mk(ErrCodeGateDenied, o.Reason)
	case StageActions:
		if !o.Executed {
			return mk(ErrCodeGateDenied, "no action eligible")
		}
		if o.Failed > 0 {
			return mk(ErrCodeExecutionFailure, "action failed")
		}
	}
	return nil
}

// firing converts a run that reached the action stage into its journal
// record.
func (o Outcome) firing(atMillis int64, hash string) ir.Firing {
	return ir.Firing{
		ID:             o.ID,
		Seq:            o.Seq,
		AtMillis:       atMillis,
		ActorID:        o.ActorID,
		ItemID:         o.ItemID,
		Trigger:        o.Trigger,
		Executed:       o.Executed,
		Actions:        append([]string(nil), o.Dispatched...),
		Scheduled:      o.Scheduled,
		Skipped:        o.Skipped,
		Failed:         o.Failed,
		Consumed:       o.Consumed,
		DefinitionHash: hash,
	}
}
