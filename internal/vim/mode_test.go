package vim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_TransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		from   Mode
		action Action
		want   Mode
	}{
		{name: "normal enter insert", from: ModeNormal, action: ActionEnterInsert, want: ModeInsert},
		{name: "normal enter command", from: ModeNormal, action: ActionEnterCommand, want: ModeCommand},
		{name: "insert escape", from: ModeInsert, action: ActionEscape, want: ModeNormal},
		{name: "command escape", from: ModeCommand, action: ActionEscape, want: ModeNormal},
		{name: "command execute", from: ModeCommand, action: ActionExecute, want: ModeNormal},

		// Unlisted pairs are no-ops.
		{name: "normal escape noop", from: ModeNormal, action: ActionEscape, want: ModeNormal},
		{name: "normal execute noop", from: ModeNormal, action: ActionExecute, want: ModeNormal},
		{name: "insert enter insert noop", from: ModeInsert, action: ActionEnterInsert, want: ModeInsert},
		{name: "insert enter command noop", from: ModeInsert, action: ActionEnterCommand, want: ModeInsert},
		{name: "insert execute noop", from: ModeInsert, action: ActionExecute, want: ModeInsert},
		{name: "command enter insert noop", from: ModeCommand, action: ActionEnterInsert, want: ModeCommand},
		{name: "command enter command noop", from: ModeCommand, action: ActionEnterCommand, want: ModeCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.Transition(tt.action))
		})
	}
}

func TestMode_TransitionIsTotal(t *testing.T) {
	t.Parallel()

	modes := []Mode{ModeNormal, ModeInsert, ModeCommand}
	actions := []Action{ActionEnterInsert, ActionEnterCommand, ActionEscape, ActionExecute}

	for _, m := range modes {
		for _, a := range actions {
			got := m.Transition(a)
			assert.Contains(t, modes, got, "transition from %v by %v left the mode set", m, a)
		}
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NORMAL", ModeNormal.String())
	assert.Equal(t, "INSERT", ModeInsert.String())
	assert.Equal(t, "COMMAND", ModeCommand.String())
}
