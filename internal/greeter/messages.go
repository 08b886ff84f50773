package greeter

// Message types for the Bubble Tea update loop.

// authResultMsg is the outcome of one full authentication attempt.
// Exactly one of the fields is meaningful:
// started means the broker accepted StartSession and the program must exit
// so the session can take over; errText is a recoverable failure shown in
// the message panel; infoText is a non-fatal broker message (an extra
// prompt the greeter cannot answer).
type authResultMsg struct {
	started  bool
	errText  string
	infoText string
}

// powerResultMsg reports a reboot or poweroff attempt.
type powerResultMsg struct{ err error }

// clockTickMsg fires once a minute to refresh the header clock.
type clockTickMsg struct{}
