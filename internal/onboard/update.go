package onboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vimgreet/vimgreet/internal/vim"
)

const tickInterval = 250 * time.Millisecond

// Network connectivity is re-probed once per second while idle.
const networkProbeEvery = 4

func (m Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) checkNetworkCmd() tea.Cmd {
	return func() tea.Msg {
		return networkStatusMsg{connected: m.runner.CheckNetwork()}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil

	case tickMsg:
		m.tickCount++
		cmds := []tea.Cmd{m.tick()}
		if m.sim.active {
			m.advanceSimulation()
		}
		if m.tickCount%networkProbeEvery == 0 && !m.isExecuting {
			cmds = append(cmds, m.checkNetworkCmd())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(x)
		return m, cmd

	case networkStatusMsg:
		m.networkConnected = x.connected
		return m, nil

	case taskStartedMsg:
		if x.idx < len(m.tasks) {
			m.tasks[x.idx].State = TaskRunning
		}
		return m, m.listenForEvents()

	case taskSuccessMsg:
		if x.idx < len(m.tasks) {
			m.tasks[x.idx].State = TaskSuccess
			m.tasks[x.idx].Output = x.output
		}
		return m, m.listenForEvents()

	case taskFailedMsg:
		if x.idx < len(m.tasks) {
			m.tasks[x.idx].State = TaskFailed
			m.tasks[x.idx].Output = x.err
		}
		m.setError(x.err)
		return m, m.listenForEvents()

	case userCreatedMsg:
		m.createdUsername = x.username
		return m, m.listenForEvents()

	case stepCompleteMsg:
		m.isExecuting = false
		// The user form is always the first step.
		m.results[0] = x.result
		if x.result == ResultCompleted {
			m.advanceToNextStep()
		}
		return m, m.listenForEvents()

	case reviewCompleteMsg:
		m.completeReview(x.anyFailed)
		return m, m.listenForEvents()

	case updateCompleteMsg:
		m.completeUpdate(x.anyFailed)
		return m, m.listenForEvents()

	case finishDoneMsg:
		m.isExecuting = false
		m.setupComplete = true
		m.confirm = m.completionConfirm()
		return m, nil

	case externalDoneMsg:
		if x.err != nil {
			m.setError("Failed to launch " + m.cfg.Network.Program + ": " + x.err.Error())
		}
		return m, m.checkNetworkCmd()

	case powerResultMsg:
		if x.err != nil {
			m.setError(x.err.Error())
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(x)
	}

	return m, nil
}

// completionConfirm picks the dialog shown once setup finishes. Simulated
// runs always offer the fake reboot that flows into the login screen.
func (m Model) completionConfirm() confirmAction {
	if m.dryRun {
		return confirmReboot
	}
	switch m.cfg.Completion.Action {
	case "poweroff":
		return confirmPoweroff
	default:
		return confirmReboot
	}
}

// completeReview finalizes the Review step and unlocks Update.
func (m *Model) completeReview(anyFailed bool) {
	m.isExecuting = false
	if anyFailed {
		m.setError(fmt.Sprintf("%d task(s) failed during configuration", m.failedTaskCount()))
	} else {
		m.setInfo("Configuration applied! You can now install packages.")
	}
	if idx := m.stepIndex(StepReview); idx >= 0 {
		m.results[idx] = ResultCompleted
	}
	m.reviewCompleted = true
	m.unlockStep(StepUpdate)
	// Without a configured Update step, Review completion opens Reboot.
	if m.stepIndex(StepUpdate) < 0 {
		m.updateCompleted = true
		m.unlockStep(StepReboot)
	}
	m.advanceToNextStep()
}

// completeUpdate finalizes the Update step and unlocks Reboot.
func (m *Model) completeUpdate(anyFailed bool) {
	m.isExecuting = false
	if anyFailed {
		m.setError(fmt.Sprintf("%d task(s) failed during configuration", m.failedTaskCount()))
	} else {
		m.setInfo("Commands completed! Reboot to finish setup.")
	}
	if idx := m.stepIndex(StepUpdate); idx >= 0 {
		m.results[idx] = ResultCompleted
	}
	m.updateCompleted = true
	m.unlockStep(StepReboot)
	m.advanceToNextStep()
}

func (m Model) failedTaskCount() int {
	n := 0
	for _, t := range m.tasks {
		if t.State == TaskFailed {
			n++
		}
	}
	return n
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.message != nil && !m.isExecuting {
		m.message = nil
	}

	if m.confirm != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.showHelp {
		if k := msg.String(); k == "esc" || k == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.isExecuting {
		return m, nil
	}

	switch m.mode {
	case vim.ModeNormal:
		return m.handleNormalMode(msg)
	case vim.ModeInsert:
		return m.handleInsertMode(msg)
	case vim.ModeCommand:
		return m.handleCommandMode(msg)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = confirmNone
		switch action {
		case confirmReboot, confirmPoweroff:
			if m.dryRun && m.setupComplete {
				// Simulated runs flow into the login screen instead.
				m.toLogin = true
				m.quitting = true
				return m, tea.Quit
			}
			m.isExecuting = true
			if action == confirmReboot {
				return m, m.rebootCmd()
			}
			return m, m.poweroffCmd()
		case confirmCancel:
			m.quitting = true
			return m, tea.Quit
		}
	case "n", "N", "esc":
		m.confirm = confirmNone
	}
	return m, nil
}

func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlH:
		m.focusSidebar()
		return m, nil
	case tea.KeyCtrlL:
		m.focusContent()
		return m, nil
	case tea.KeySpace:
		if id, ok := m.currentStepID(); ok && id == StepUpdate && m.panel == panelContent {
			m.toggleUpdateItem()
		}
		return m, nil
	}

	switch msg.String() {
	case ":":
		m.mode = m.mode.Transition(vim.ActionEnterCommand)
		m.command.Clear()

	case "j", "down", "tab":
		m.navigateDown()
	case "k", "up", "shift+tab":
		m.navigateUp()

	case "i", "a":
		if m.panel == panelContent && m.content.kind != focusNone {
			m.mode = m.mode.Transition(vim.ActionEnterInsert)
		}

	case "enter":
		return m.handleEnter()

	case "l", "right":
		if m.panel == panelSidebar {
			m.focusContent()
		} else {
			return m.handleEnter()
		}

	case "h", "left":
		if m.panel == panelContent {
			m.focusSidebar()
		}
	case "esc":
		if m.panel == panelContent {
			m.focusSidebar()
		}

	case "?", "f1":
		m.showHelp = true
	case "f12":
		m.confirm = confirmPoweroff

	default:
		if n := digitKey(msg); n > 0 {
			if m.setupStarted && m.panel == panelSidebar && n <= len(m.menu) {
				m.selected = n - 1
				m.loadStepContent()
			}
			return m, nil
		}
		// Typing on a picker starts filtering immediately.
		if m.panel == panelContent && m.content.kind == focusPicker && msg.Type == tea.KeyRunes {
			m.mode = m.mode.Transition(vim.ActionEnterInsert)
			for _, r := range msg.Runes {
				m.pickerFilter.Insert(r)
			}
			m.pickerSelected = 0
		}
	}
	return m, nil
}

func digitKey(msg tea.KeyMsg) int {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0
	}
	if r := msg.Runes[0]; r >= '1' && r <= '9' {
		return int(r - '0')
	}
	return 0
}

func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = m.mode.Transition(vim.ActionEscape)

	case tea.KeyEnter:
		return m.handleInsertEnter()

	case tea.KeyTab:
		if m.content.kind == focusField && m.content.field < m.lastFieldIndex() {
			m.content.field++
		}
	case tea.KeyShiftTab:
		if m.content.kind == focusField && m.content.field > 0 {
			m.content.field--
		}

	case tea.KeyBackspace:
		if m.content.kind == focusPicker {
			m.pickerFilter.DeleteBack()
			m.pickerSelected = 0
		} else if buf := m.currentBuffer(); buf != nil {
			buf.DeleteBack()
		}
	case tea.KeyDelete:
		if buf := m.currentBuffer(); buf != nil {
			buf.DeleteForward()
		}
	case tea.KeyLeft:
		if buf := m.currentBuffer(); buf != nil {
			buf.MoveLeft()
		}
	case tea.KeyRight:
		if buf := m.currentBuffer(); buf != nil {
			buf.MoveRight()
		}
	case tea.KeyHome, tea.KeyCtrlA:
		if buf := m.currentBuffer(); buf != nil {
			buf.MoveStart()
		}
	case tea.KeyEnd, tea.KeyCtrlE:
		if buf := m.currentBuffer(); buf != nil {
			buf.MoveEnd()
		}
	case tea.KeyCtrlU:
		if buf := m.currentBuffer(); buf != nil {
			buf.Clear()
		}
	case tea.KeyCtrlW:
		if buf := m.currentBuffer(); buf != nil {
			buf.DeleteWordBack()
		}
	case tea.KeyCtrlH:
		m.mode = vim.ModeNormal
		m.focusSidebar()

	case tea.KeyRunes, tea.KeySpace:
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if m.content.kind == focusPicker {
			for _, r := range runes {
				m.pickerFilter.Insert(r)
			}
			m.pickerSelected = 0
		} else if buf := m.currentBuffer(); buf != nil {
			for _, r := range runes {
				buf.Insert(r)
			}
		}
	}
	return m, nil
}

// handleInsertEnter advances through form fields, submitting on the last one.
func (m Model) handleInsertEnter() (tea.Model, tea.Cmd) {
	switch m.content.kind {
	case focusField:
		id, _ := m.currentStepID()
		switch id {
		case StepUser:
			if m.content.field < 2 {
				m.content.field++
				return m, nil
			}
			m.mode = vim.ModeNormal
			return m, m.executeUserStep()
		case StepUpdate:
			if !m.sudoPassword.IsEmpty() {
				m.sudoEntered = true
				m.mode = vim.ModeNormal
				return m, m.executeUpdate()
			}
		default:
			m.mode = vim.ModeNormal
		}
	case focusPicker:
		m.selectPickerItem()
		m.mode = vim.ModeNormal
	default:
		m.mode = vim.ModeNormal
	}
	return m, nil
}

func (m Model) lastFieldIndex() int {
	if id, ok := m.currentStepID(); ok && id == StepUser {
		return 2
	}
	return 0
}

func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = m.mode.Transition(vim.ActionEscape)
		m.command.Clear()
	case tea.KeyEnter:
		line := m.command.Content()
		m.mode = m.mode.Transition(vim.ActionExecute)
		m.command.Clear()
		return m.executeWizardCommand(line)
	case tea.KeyBackspace:
		if m.command.IsEmpty() {
			m.mode = m.mode.Transition(vim.ActionEscape)
		} else {
			m.command.DeleteBack()
		}
	case tea.KeyRunes, tea.KeySpace:
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		for _, r := range runes {
			m.command.Insert(r)
		}
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.panel {
	case panelWelcome:
		m.startSetup()

	case panelSidebar:
		if m.isCurrentStepLocked() {
			m.setError("This step is locked. Complete previous steps first.")
			return m, nil
		}
		m.focusContent()
		if item := m.currentItem(); item != nil && item.HasForm {
			m.mode = vim.ModeInsert
		}

	case panelContent:
		if m.isCurrentStepLocked() {
			m.setError("This step is locked. Complete previous steps first.")
			return m, nil
		}

		// Simulated Update runs need no sudo password.
		if id, ok := m.currentStepID(); ok && id == StepUpdate && m.dryRun {
			return m, m.executeUpdate()
		}

		switch m.content.kind {
		case focusPicker:
			m.selectPickerItem()
		case focusField:
			m.mode = vim.ModeInsert
		case focusNone:
			id, ok := m.currentStepID()
			if !ok {
				return m, nil
			}
			switch id {
			case StepNetwork:
				if m.networkConnected {
					m.advanceToNextStep()
					return m, nil
				}
				return m, m.launchNetworkTool()
			case StepReview:
				return m, m.executeReview()
			case StepUpdate:
				return m, m.executeUpdate()
			case StepReboot:
				return m, m.finishSetup()
			}
		}
	}
	return m, nil
}

// executeWizardCommand runs the wizard's : command vocabulary.
func (m Model) executeWizardCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	name := ""
	if len(fields) > 0 {
		name = fields[0]
	}

	switch name {
	case "start", "run":
		if !m.setupStarted {
			m.startSetup()
		}
	case "next", "n":
		m.advanceToNextStep()
	case "skip", "s":
		return m.skipCurrentStep()
	case "cancel", "q", "quit":
		m.confirm = confirmCancel
	case "reboot":
		m.confirm = confirmReboot
	case "poweroff", "shutdown":
		m.confirm = confirmPoweroff
	case "help", "h":
		m.showHelp = true
	case "submit", "create", "install", "update":
		return m, m.executeUserStep()
	case "finish", "done", "login":
		if m.reviewCompleted {
			return m, m.finishSetup()
		}
		m.setError("Complete the Review step first")
	default:
		m.setError("Unknown command: " + name)
	}
	return m, nil
}

func (m Model) skipCurrentStep() (tea.Model, tea.Cmd) {
	item := m.currentItem()
	if item == nil || item.Required {
		m.setError("This step is required")
		return m, nil
	}
	m.results[m.selected] = ResultSkipped
	// Skipping Update still opens the road to Reboot.
	if item.ID == StepUpdate {
		m.updateCompleted = true
		m.unlockStep(StepReboot)
	}
	m.advanceToNextStep()
	return m, nil
}

func (m *Model) navigateDown() {
	switch m.panel {
	case panelWelcome:
	case panelSidebar:
		if m.selected < len(m.menu)-1 {
			m.selected++
			m.loadStepContent()
		}
	case panelContent:
		if id, ok := m.currentStepID(); ok && id == StepUpdate && len(m.tasks) == 0 && len(m.cfg.Updates) > 0 {
			m.navigateUpdateDown()
			return
		}
		switch m.content.kind {
		case focusPicker:
			if n := len(m.filteredPickerItems()); m.pickerSelected < n-1 {
				m.pickerSelected++
			}
		case focusField:
			if m.content.field < m.lastFieldIndex() {
				m.content.field++
			}
		}
	}
}

func (m *Model) navigateUp() {
	switch m.panel {
	case panelWelcome:
	case panelSidebar:
		if m.selected > 0 {
			m.selected--
			m.loadStepContent()
		}
	case panelContent:
		if id, ok := m.currentStepID(); ok && id == StepUpdate && len(m.tasks) == 0 && len(m.cfg.Updates) > 0 {
			m.navigateUpdateUp()
			return
		}
		switch m.content.kind {
		case focusPicker:
			if m.pickerSelected > 0 {
				m.pickerSelected--
			}
		case focusField:
			if m.content.field > 0 {
				m.content.field--
			}
		}
	}
}
