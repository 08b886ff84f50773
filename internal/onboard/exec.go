package onboard

import (
	"fmt"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/config"
	"github.com/vimgreet/vimgreet/internal/system"
)

// Background execution posts progress messages to m.events; the re-armed
// listenForEvents command feeds them back into Update. Each trigger below
// copies everything its goroutine needs before starting it, so no goroutine
// ever touches the model or an input buffer.

// executeUserStep creates the account from the User form.
func (m *Model) executeUserStep() tea.Cmd {
	if id, ok := m.currentStepID(); !ok || id != StepUser {
		return nil
	}
	if !m.validateUserForm() {
		return nil
	}

	username := m.username.Content()
	password := m.password.Content()

	m.isExecuting = true
	m.tasks = []Task{{Name: fmt.Sprintf("Creating user '%s'", username), State: TaskRunning, Progress: -1}}

	if m.dryRun {
		m.tasks[0].State = TaskSuccess
		m.createdUsername = username
		m.results[0] = ResultCompleted
		m.isExecuting = false
		m.advanceToNextStep()
		return nil
	}

	runner, events := m.runner, m.events
	groups, shell := m.cfg.User.Groups, m.cfg.User.Shell

	go func() {
		if err := runner.CreateUser(username, password, groups, shell); err != nil {
			events <- taskFailedMsg{idx: 0, err: err.Error()}
			events <- userCreatedMsg{}
			events <- stepCompleteMsg{result: ResultFailed}
			return
		}
		events <- taskSuccessMsg{idx: 0}
		events <- userCreatedMsg{username: username}
		events <- stepCompleteMsg{result: ResultCompleted}
	}()
	return nil
}

// executeReview applies the whole configuration in order: account, locale,
// keyboard, timezone. A failed task does not abort the remaining ones, but a
// failed account creation does.
func (m *Model) executeReview() tea.Cmd {
	if !m.validateUserForm() {
		return nil
	}

	username := m.username.Content()
	password := m.password.Content()

	m.tasks = m.tasks[:0]
	m.tasks = append(m.tasks, Task{Name: fmt.Sprintf("Creating user '%s'", username), Progress: -1})
	if m.selectedLocale != "" {
		m.tasks = append(m.tasks, Task{Name: "Setting locale to " + m.selectedLocale, Progress: -1})
	}
	if m.selectedKeyboard != "" {
		m.tasks = append(m.tasks, Task{Name: "Setting keyboard to " + m.selectedKeyboard, Progress: -1})
	}
	if m.selectedTimezone != "" {
		m.tasks = append(m.tasks, Task{Name: "Setting timezone to " + m.selectedTimezone, Progress: -1})
	}

	if m.dryRun {
		for i := range m.tasks {
			m.tasks[i].Progress = 0
		}
		m.createdUsername = username
		m.startSimulation(simCompleteReview)
		return nil
	}

	m.isExecuting = true
	m.tasks[0].State = TaskRunning

	runner, events := m.runner, m.events
	groups, shell := m.cfg.User.Groups, m.cfg.User.Shell
	locale, keymap, timezone := m.selectedLocale, m.selectedKeyboard, m.selectedTimezone

	go func() {
		events <- taskStartedMsg{idx: 0}
		if err := runner.CreateUser(username, password, groups, shell); err != nil {
			events <- taskFailedMsg{idx: 0, err: err.Error()}
			events <- userCreatedMsg{}
			events <- reviewCompleteMsg{anyFailed: true}
			return
		}
		events <- taskSuccessMsg{idx: 0}
		events <- userCreatedMsg{username: username}

		anyFailed := false
		idx := 1
		apply := func(value string, set func(string) error) {
			if value == "" {
				return
			}
			events <- taskStartedMsg{idx: idx}
			if err := set(value); err != nil {
				anyFailed = true
				events <- taskFailedMsg{idx: idx, err: err.Error()}
			} else {
				events <- taskSuccessMsg{idx: idx}
			}
			idx++
		}
		apply(locale, runner.SetLocale)
		apply(keymap, runner.SetKeymap)
		apply(timezone, runner.SetTimezone)

		events <- reviewCompleteMsg{anyFailed: anyFailed}
	}()
	return nil
}

// executeUpdate runs the commands of every selected package as the created
// user. With nothing selected the step is skipped outright.
func (m *Model) executeUpdate() tea.Cmd {
	commands := m.selectedCommands()

	if len(commands) == 0 {
		if idx := m.stepIndex(StepUpdate); idx >= 0 {
			m.results[idx] = ResultSkipped
		}
		m.updateCompleted = true
		m.unlockStep(StepReboot)
		m.setInfo("No packages selected. Continuing to finish.")
		m.advanceToNextStep()
		return nil
	}

	m.tasks = m.tasks[:0]
	for _, cmd := range commands {
		m.tasks = append(m.tasks, Task{Name: cmd.Name, Progress: -1})
	}

	if m.dryRun {
		for i := range m.tasks {
			m.tasks[i].Progress = 0
		}
		m.startSimulation(simCompleteUpdate)
		return nil
	}

	if m.createdUsername == "" {
		m.tasks = nil
		m.setError("User must be created before running commands")
		return nil
	}
	if m.commandsNeedSudo() && !m.sudoEntered {
		m.tasks = nil
		m.sudoNeeded = true
		m.setError("Enter your password for sudo commands")
		return nil
	}

	m.isExecuting = true

	runner, events := m.runner, m.events
	username := m.createdUsername
	sudoPass := m.sudoPassword.Content()

	go runUpdateCommands(runner, events, username, sudoPass, commands)
	return nil
}

func runUpdateCommands(runner system.Runner, events chan<- tea.Msg, username, sudoPass string, commands []config.CommandConfig) {
	anyFailed := false
	for idx, cmd := range commands {
		events <- taskStartedMsg{idx: idx}

		var out string
		var err error
		if cmd.Sudo {
			out, err = runner.RunAsUserSudo(username, cmd.Command, sudoPass)
		} else {
			out, err = runner.RunAsUser(username, cmd.Command)
		}
		if err != nil {
			anyFailed = true
			events <- taskFailedMsg{idx: idx, err: err.Error()}
			continue
		}
		events <- taskSuccessMsg{idx: idx, output: out}
	}
	events <- updateCompleteMsg{anyFailed: anyFailed}
}

// finishSetup runs the completion tasks: drop the wizard's auto-login from
// the broker config, then offer the configured completion action.
func (m *Model) finishSetup() tea.Cmd {
	m.isExecuting = true
	m.tasks = []Task{{Name: "Finishing setup", State: TaskRunning, Progress: -1}}

	runner, events := m.runner, m.events
	removeSession := !m.dryRun && config.Deref(m.cfg.Completion.RemoveInitialSession, true)

	go func() {
		if removeSession {
			if err := runner.RemoveInitialSession(); err != nil {
				logrus.WithError(err).Warn("failed to remove initial session")
			}
		}
		events <- taskSuccessMsg{idx: 0}
		events <- finishDoneMsg{}
	}()
	return nil
}

// launchNetworkTool suspends the wizard and hands the terminal to the
// configured network program until it exits.
func (m *Model) launchNetworkTool() tea.Cmd {
	program := m.cfg.Network.Program
	if program == "" {
		m.setError("No network tool configured")
		return nil
	}
	logrus.WithField("program", program).Info("launching network tool")
	cmd := exec.Command(program, m.cfg.Network.Args...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalDoneMsg{err: err}
	})
}

func (m Model) rebootCmd() tea.Cmd {
	return func() tea.Msg {
		return powerResultMsg{err: system.Reboot(m.dryRun)}
	}
}

func (m Model) poweroffCmd() tea.Cmd {
	return func() tea.Msg {
		return powerResultMsg{err: system.Poweroff(m.dryRun)}
	}
}
