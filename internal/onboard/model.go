package onboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/config"
	"github.com/vimgreet/vimgreet/internal/system"
	"github.com/vimgreet/vimgreet/internal/vim"
)

const eventBufferSize = 256

// panelFocus identifies which panel receives navigation keys.
type panelFocus int

const (
	panelWelcome panelFocus = iota
	panelSidebar
	panelContent
)

// focusKind says what inside the content panel is focused.
type focusKind int

const (
	focusNone focusKind = iota
	focusPicker
	focusField
)

// contentFocus is the focus target within the content panel. field indexes
// the form inputs (0=username, 1=password, 2=confirm; 0=sudo password on the
// Update step).
type contentFocus struct {
	kind  focusKind
	field int
}

// confirmAction is a pending destructive action awaiting y/n.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmReboot
	confirmPoweroff
	confirmCancel
)

type statusMessage struct {
	text    string
	isError bool
}

// Model is the root Bubble Tea model for the setup wizard.
type Model struct {
	cfg    config.Config
	runner system.Runner
	dryRun bool

	mode    vim.Mode
	command *vim.Buffer

	panel   panelFocus
	content contentFocus

	menu     []MenuItem
	selected int
	results  []StepResult

	pickerItems    []string
	pickerSelected int
	pickerFilter   *vim.Buffer

	username        *vim.Buffer
	password        *vim.Buffer
	passwordConfirm *vim.Buffer
	sudoPassword    *vim.Buffer
	sudoNeeded      bool
	sudoEntered     bool

	tasks       []Task
	isExecuting bool

	selectedLocale   string
	selectedKeyboard string
	selectedTimezone string

	message       *statusMessage
	confirm       confirmAction
	showHelp      bool
	setupStarted  bool
	setupComplete bool

	networkConnected bool
	createdUsername  string

	reviewCompleted bool
	updateCompleted bool

	// Package selection matrix, indexed [category][package].
	pkgSelected  [][]bool
	pkgCatCursor int
	// pkgCursor is the package index within the category, -1 on the header.
	pkgCursor int

	sim simState

	// events carries messages from background execution goroutines.
	events chan tea.Msg

	spinner   spinner.Model
	progress  progress.Model
	tickCount int

	width  int
	height int

	quitting bool
	toLogin  bool
}

// New constructs the wizard model. The runner decides whether operations
// touch the live system.
func New(cfg config.Config, runner system.Runner, dryRun bool) Model {
	menu := buildMenu(cfg)

	pkgSelected := make([][]bool, len(cfg.Updates))
	for i, cat := range cfg.Updates {
		pkgSelected[i] = make([]bool, len(cat.Packages))
		for j, pkg := range cat.Packages {
			pkgSelected[i][j] = pkg.DefaultEnabled(cat.EnabledByDefault)
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Line

	logrus.WithField("steps", len(menu)).Info("setup wizard initialized")

	return Model{
		cfg:             cfg,
		runner:          runner,
		dryRun:          dryRun,
		mode:            vim.ModeNormal,
		command:         vim.NewBuffer(),
		panel:           panelWelcome,
		menu:            menu,
		results:         initialResults(menu),
		pickerFilter:    vim.NewBuffer(),
		username:        vim.NewBuffer(),
		password:        vim.NewMasked(),
		passwordConfirm: vim.NewMasked(),
		sudoPassword:    vim.NewMasked(),
		pkgSelected:     pkgSelected,
		pkgCursor:       -1,
		events:          make(chan tea.Msg, eventBufferSize),
		spinner:         sp,
		progress:        progress.New(progress.WithDefaultGradient()),
	}
}

// TransitionToLogin reports whether the wizard finished a simulated run and
// the caller should present the login screen next.
func (m Model) TransitionToLogin() bool { return m.toLogin }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Tick, m.listenForEvents(), m.checkNetworkCmd())
}

// listenForEvents waits for the next message from an execution goroutine.
func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m Model) currentItem() *MenuItem {
	if m.selected < 0 || m.selected >= len(m.menu) {
		return nil
	}
	return &m.menu[m.selected]
}

func (m Model) currentStepID() (StepID, bool) {
	if item := m.currentItem(); item != nil {
		return item.ID, true
	}
	return 0, false
}

func (m Model) stepIndex(id StepID) int {
	for i, item := range m.menu {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) isStepLocked(idx int) bool {
	return idx >= 0 && idx < len(m.results) && m.results[idx] == ResultLocked
}

func (m Model) isCurrentStepLocked() bool {
	return m.isStepLocked(m.selected)
}

// unlockStep flips a Locked step back to Pending.
func (m *Model) unlockStep(id StepID) {
	if idx := m.stepIndex(id); idx >= 0 && m.results[idx] == ResultLocked {
		m.results[idx] = ResultPending
	}
}

func (m *Model) setError(text string) {
	m.message = &statusMessage{text: text, isError: true}
}

func (m *Model) setInfo(text string) {
	m.message = &statusMessage{text: text}
}

func (m *Model) focusSidebar() {
	if m.setupStarted && !m.setupComplete {
		m.panel = panelSidebar
		m.content = contentFocus{kind: focusNone}
	}
}

func (m *Model) focusContent() {
	if !m.setupStarted || m.setupComplete {
		return
	}
	m.panel = panelContent
	item := m.currentItem()
	switch {
	case item == nil:
		m.content = contentFocus{kind: focusNone}
	case item.HasPicker:
		m.content = contentFocus{kind: focusPicker}
		m.mode = m.mode.Transition(vim.ActionEnterInsert)
	case item.HasForm:
		m.content = contentFocus{kind: focusField}
	default:
		m.content = contentFocus{kind: focusNone}
	}
}

func (m *Model) startSetup() {
	m.setupStarted = true
	m.selected = 0
	m.loadStepContent()

	// Connectivity observed at start completes the Network step up front.
	if m.networkConnected && config.Deref(m.cfg.Network.SkipIfConnected, true) {
		if idx := m.stepIndex(StepNetwork); idx >= 0 {
			m.results[idx] = ResultCompleted
		}
	}

	m.focusContent()
	if item := m.currentItem(); item != nil && item.HasForm {
		m.mode = vim.ModeInsert
	}
}

// loadStepContent primes per-step state whenever the selection changes.
func (m *Model) loadStepContent() {
	item := m.currentItem()
	if item == nil {
		return
	}
	switch item.ID {
	case StepLocale:
		// A configured available list overrides system enumeration.
		if len(m.cfg.Locale.Available) > 0 {
			m.resetPicker(m.cfg.Locale.Available)
		} else {
			m.resetPicker(m.runner.ListLocales())
		}
	case StepKeyboard:
		if len(m.cfg.Keyboard.Available) > 0 {
			m.resetPicker(m.cfg.Keyboard.Available)
		} else {
			m.resetPicker(m.runner.ListKeymaps())
		}
	case StepPreferences:
		m.resetPicker(m.runner.ListTimezones())
	case StepUpdate:
		m.sudoNeeded = m.commandsNeedSudo()
		m.sudoPassword.Clear()
		m.sudoEntered = false
	}
}

func (m *Model) resetPicker(items []string) {
	m.pickerItems = items
	m.pickerSelected = 0
	m.pickerFilter.Clear()
}

// filteredPickerItems returns picker entries matching the filter, case
// insensitively.
func (m Model) filteredPickerItems() []string {
	filter := lowerContent(m.pickerFilter)
	if filter == "" {
		return m.pickerItems
	}
	var out []string
	for _, item := range m.pickerItems {
		if containsFold(item, filter) {
			out = append(out, item)
		}
	}
	return out
}

func (m *Model) selectPickerItem() {
	filtered := m.filteredPickerItems()
	if m.pickerSelected < 0 || m.pickerSelected >= len(filtered) {
		return
	}
	item := filtered[m.pickerSelected]

	id, ok := m.currentStepID()
	if !ok {
		return
	}
	switch id {
	case StepLocale:
		m.selectedLocale = item
		m.results[m.selected] = ResultCompleted
		m.setInfo("Locale selected: " + item)
	case StepKeyboard:
		m.selectedKeyboard = item
		m.results[m.selected] = ResultCompleted
		m.setInfo("Keyboard selected: " + item)
	case StepPreferences:
		m.selectedTimezone = item
		m.results[m.selected] = ResultCompleted
		m.setInfo("Timezone selected: " + item)
	default:
		return
	}
	m.advanceToNextStep()
}

func (m *Model) advanceToNextStep() {
	if m.selected < len(m.menu)-1 {
		m.selected++
		m.loadStepContent()
	}
	m.focusContent()
}

func lowerContent(b *vim.Buffer) string {
	return strings.ToLower(b.Content())
}

func containsFold(s, loweredNeedle string) bool {
	return strings.Contains(strings.ToLower(s), loweredNeedle)
}

// currentBuffer resolves the input buffer behind the current content focus.
func (m *Model) currentBuffer() *vim.Buffer {
	switch m.content.kind {
	case focusPicker:
		return m.pickerFilter
	case focusField:
		id, _ := m.currentStepID()
		switch id {
		case StepUser:
			switch m.content.field {
			case 0:
				return m.username
			case 1:
				return m.password
			case 2:
				return m.passwordConfirm
			}
		case StepUpdate:
			if m.content.field == 0 {
				return m.sudoPassword
			}
		}
	}
	return nil
}
