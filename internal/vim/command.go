package vim

import (
	"fmt"
	"strings"
)

// CommandKind identifies a parsed login-screen command.
type CommandKind int

const (
	CmdReboot CommandKind = iota
	CmdPoweroff
	CmdSession
	CmdUser
	CmdLogin
	CmdCancel
	CmdHelp
	CmdQuit
)

// Command is a parsed command-line entry. Arg is empty unless the command
// takes an argument and one was supplied.
type Command struct {
	Kind CommandKind
	Arg  string
}

// ParseCommand parses the trimmed command-buffer text. The keyword is
// case-insensitive; at most one argument is recognized. Empty input and
// unknown keywords are errors surfaced to the user.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	keyword, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(keyword) {
	case "reboot", "rb":
		return Command{Kind: CmdReboot}, nil
	case "poweroff", "shutdown", "po":
		return Command{Kind: CmdPoweroff}, nil
	case "session", "s":
		return Command{Kind: CmdSession, Arg: arg}, nil
	case "user", "u":
		return Command{Kind: CmdUser, Arg: arg}, nil
	case "login", "l":
		return Command{Kind: CmdLogin}, nil
	case "cancel", "c":
		return Command{Kind: CmdCancel}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "q", "quit", "exit":
		return Command{Kind: CmdQuit}, nil
	case "":
		return Command{}, fmt.Errorf("unknown command: empty command")
	default:
		return Command{}, fmt.Errorf("unknown command: %s", keyword)
	}
}
