package loader

import "fmt"

// ErrorCode classifies a problem found while loading.
type ErrorCode string

const (
	// CodeDefinitionMalformed marks an entry that could not be decoded.
	CodeDefinitionMalformed ErrorCode = "DEFINITION_MALFORMED"

	// CodeUnknownTrigger marks a mechanics key that names no trigger.
	CodeUnknownTrigger ErrorCode = "UNKNOWN_TRIGGER"

	// CodeUnknownActionKind marks an action whose type has no factory.
	CodeUnknownActionKind ErrorCode = "UNKNOWN_ACTION_KIND"

	// CodeUnknownConditionType marks a condition type the evaluator does
	// not know. The condition is kept and will evaluate false.
	CodeUnknownConditionType ErrorCode = "UNKNOWN_CONDITION_TYPE"
)

// LoadError describes one skipped or suspicious entry.
type LoadError struct {
	Code    ErrorCode
	Item    string
	Path    string // e.g. mechanics.right_click.actions[1]
	Pos     string // file:line:col when known
	Message string
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Item != "" && e.Path != "":
		msg = fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Item, e.Path, e.Message)
	case e.Item != "":
		msg = fmt.Sprintf("%s: %s: %s", e.Code, e.Item, e.Message)
	}
	if e.Pos != "" {
		return e.Pos + ": " + msg
	}
	return msg
}
