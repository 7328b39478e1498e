package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/todoisland/internal/dashboard"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/existflow/todoisland/internal/session"
)

// Screen is what is currently shown
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenSignIn
	ScreenDashboard
)

// Mode represents the current dashboard UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeConfirmDelete
	ModeHelp
)

// Sign-in form fields
const (
	fieldUsername = iota
	fieldPassword
)

// Options tunes the model
type Options struct {
	ConfirmDelete bool
}

// Model is the main TUI model
type Model struct {
	provider *session.Provider
	board    *dashboard.Board
	bridge   *Bridge
	opts     Options

	route  session.Route
	screen Screen
	mode   Mode

	// Sign-in form
	username textinput.Model
	password textinput.Model
	focus    int

	// Dashboard
	input   textinput.Model
	cursor  int
	pending int64 // task awaiting delete confirmation

	width  int
	height int
	busy   bool

	message      string
	messageLevel resource.NoticeLevel
}

// NewModel creates a new TUI model. board must publish its notices to bridge
// and the session store must navigate through it.
func NewModel(provider *session.Provider, board *dashboard.Board, bridge *Bridge, opts Options) Model {
	logger.Info("Initializing TUI model")

	username := textinput.New()
	username.Placeholder = "username or email"
	username.CharLimit = 128
	username.Width = 32
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 256
	ti.Width = 50

	provider.Subscribe(bridge.stateChanged)
	board.Subscribe(bridge.boardChanged)

	return Model{
		provider: provider,
		board:    board,
		bridge:   bridge,
		opts:     opts,
		route:    session.RouteDashboard,
		screen:   ScreenLoading,
		username: username,
		password: password,
		input:    ti,
	}
}

// Screen returns the screen being shown
func (m Model) Screen() Screen {
	return m.screen
}

// Message returns the current status bar message
func (m Model) Message() string {
	return m.message
}

// visibleTasks returns the display order of the board
func (m Model) visibleTasks() []model.Task {
	return m.board.Ordered()
}

func (m Model) currentTask() (model.Task, bool) {
	list := m.visibleTasks()
	if m.cursor >= 0 && m.cursor < len(list) {
		return list[m.cursor], true
	}
	return model.Task{}, false
}

func (m *Model) clampCursor() {
	n := len(m.board.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setMessage(level resource.NoticeLevel, msg string) {
	m.messageLevel = level
	m.message = msg
}
