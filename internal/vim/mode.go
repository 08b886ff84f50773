// Package vim implements the modal editing engine shared by the greeter
// login screen and the onboarding wizard: a three-state mode machine, a
// secret-aware text buffer, and the command-line parser.
package vim

// Mode is the current editing mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeCommand
)

// Action is a mode-changing input.
type Action int

const (
	ActionEnterInsert Action = iota
	ActionEnterCommand
	ActionEscape
	ActionExecute
)

// Transition returns the mode reached from m by action. The table is total:
// pairs not listed leave the mode unchanged.
func (m Mode) Transition(a Action) Mode {
	switch {
	case m == ModeNormal && a == ActionEnterInsert:
		return ModeInsert
	case m == ModeNormal && a == ActionEnterCommand:
		return ModeCommand
	case m == ModeInsert && a == ActionEscape:
		return ModeNormal
	case m == ModeCommand && a == ActionEscape:
		return ModeNormal
	case m == ModeCommand && a == ActionExecute:
		return ModeNormal
	}
	return m
}

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "INSERT"
	case ModeCommand:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}
