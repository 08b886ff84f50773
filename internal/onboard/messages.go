package onboard

// Message types for the Bubble Tea update loop. Background execution
// goroutines post these to the model's event channel; listenForEvents
// re-arms after each delivery.

// taskStartedMsg marks task idx as running.
type taskStartedMsg struct{ idx int }

// taskSuccessMsg marks task idx as finished, optionally carrying output.
type taskSuccessMsg struct {
	idx    int
	output string
}

// taskFailedMsg marks task idx as failed.
type taskFailedMsg struct {
	idx int
	err string
}

// userCreatedMsg records the created account. An empty username means the
// creation failed.
type userCreatedMsg struct{ username string }

// reviewCompleteMsg ends Review execution and unlocks the Update step.
type reviewCompleteMsg struct{ anyFailed bool }

// updateCompleteMsg ends Update execution and unlocks the Reboot step.
type updateCompleteMsg struct{ anyFailed bool }

// stepCompleteMsg ends single-step (User form) execution.
type stepCompleteMsg struct{ result StepResult }

// finishDoneMsg ends the completion tasks triggered from the Reboot step.
type finishDoneMsg struct{}

// networkStatusMsg carries the result of an async connectivity probe.
type networkStatusMsg struct{ connected bool }

// externalDoneMsg is delivered when a launched external program exits.
type externalDoneMsg struct{ err error }

// powerResultMsg reports a reboot or poweroff attempt.
type powerResultMsg struct{ err error }

// tickMsg drives the spinner, the periodic network probe, and the dry-run
// progress simulation.
type tickMsg struct{}
