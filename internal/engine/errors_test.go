package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/mechanics/internal/ir"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "full",
			err:  &Error{Code: ErrCodeGateDenied, Message: "cooldown active", ActorID: "p1", ItemID: "wand", Trigger: ir.TriggerRightClick},
			want: "GATE_DENIED: cooldown active (actor=p1, item=wand, trigger=right_click)",
		},
		{
			name: "actor only",
			err:  &Error{Code: ErrCodeInvalidInvocation, Message: "actor offline", ActorID: "p1"},
			want: "INVALID_INVOCATION: actor offline (actor=p1)",
		},
		{
			name: "bare",
			err:  &Error{Code: ErrCodeUnknownTrigger, Message: "unknown trigger"},
			want: "UNKNOWN_TRIGGER: unknown trigger",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Helpers(t *testing.T) {
	gate := fmt.Errorf("wrapped: %w", &Error{Code: ErrCodeGateDenied})
	exec := &Error{Code: ErrCodeExecutionFailure}

	assert.True(t, IsGateDenied(gate))
	assert.False(t, IsExecutionFailure(gate))
	assert.True(t, IsExecutionFailure(exec))
	assert.Equal(t, ErrorCode(""), ErrorCodeOf(errors.New("plain")))
	assert.False(t, IsGateDenied(nil))
}
