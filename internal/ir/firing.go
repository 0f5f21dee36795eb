package ir

// Firing is the journal record of one invocation that reached the action
// stage of the pipeline.
type Firing struct {
	// ID is unique per invocation (UUIDv7 in production).
	ID string `json:"id"`

	// Seq is the engine's logical clock value at dispatch.
	Seq int64 `json:"seq"`

	// AtMillis is the wall-clock time of dispatch, Unix milliseconds.
	AtMillis int64 `json:"at_ms"`

	ActorID string      `json:"actor_id"`
	ItemID  string      `json:"item_id"`
	Trigger TriggerKind `json:"trigger"`

	// Executed is true when at least one action was dispatched.
	Executed bool `json:"executed"`

	// Actions lists the dispatched action kinds in declaration order.
	Actions []string `json:"actions"`

	Scheduled int  `json:"scheduled"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Consumed  bool `json:"consumed"`

	// DefinitionHash identifies the definition version that ran.
	DefinitionHash string `json:"definition_hash"`
}
