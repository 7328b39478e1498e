package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/existflow/todoisland/internal/session"
)

// loginDoneMsg reports the end of a sign-in attempt
type loginDoneMsg struct {
	err error
}

// loadedMsg reports the end of a task list fetch
type loadedMsg struct {
	err error
}

// opDoneMsg reports the end of a task mutation
type opDoneMsg struct {
	err error
}

// Init rehydrates the session and starts listening for core events
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initSession(), m.bridge.wait())
}

func (m Model) initSession() tea.Cmd {
	provider := m.provider
	return func() tea.Msg {
		provider.Init()
		return stateMsg{}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		next, cmd := m.Update(msg.inner)
		return next, tea.Batch(cmd, m.bridge.wait())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		return m.resolve()

	case navigateMsg:
		m.route = msg.to
		return m.resolve()

	case noticeMsg:
		m.setMessage(msg.notice.Level, msg.notice.Message)
		return m, nil

	case boardMsg:
		m.clampCursor()
		return m, nil

	case loginDoneMsg:
		m.busy = false
		m.password.SetValue("")
		if msg.err != nil {
			m.setMessage(resource.LevelError, msg.err.Error())
			m.focus = fieldPassword
			m.username.Blur()
			m.password.Focus()
		}
		return m, nil

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			// Failure notice already published by the task client
			logger.Warn("Failed to load tasks", logger.F("error", msg.err))
		}
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		m.busy = false
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case ScreenSignIn:
			return m.updateSignIn(msg)
		case ScreenDashboard:
			return m.updateDashboard(msg)
		default:
			if key.Matches(msg, keys.Quit) {
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func policyFor(r session.Route) session.Policy {
	switch r {
	case session.RouteDashboard:
		return session.RequireAuth
	case session.RouteSignIn, session.RouteSignUp:
		return session.ForbidAuth
	default:
		return session.Public
	}
}

func screenFor(r session.Route) Screen {
	if r == session.RouteDashboard {
		return ScreenDashboard
	}
	return ScreenSignIn
}

// resolve applies the route guard and switches screens
func (m Model) resolve() (Model, tea.Cmd) {
	for i := 0; i < 2; i++ {
		d := session.Guard(policyFor(m.route), m.provider.Snapshot())
		if d.Action == session.Wait {
			m.screen = ScreenLoading
			return m, nil
		}
		if d.Action == session.Redirect {
			m.route = d.To
			continue
		}
		break
	}

	prev := m.screen
	m.screen = screenFor(m.route)

	switch {
	case m.screen == ScreenDashboard && prev != ScreenDashboard:
		logger.Debug("Entering dashboard")
		m.mode = ModeNormal
		m.cursor = 0
		m.busy = true
		return m, m.mountCmd()
	case m.screen != ScreenDashboard && prev == ScreenDashboard:
		logger.Debug("Leaving dashboard")
		m.board.Unmount()
		m.mode = ModeNormal
		m.focus = fieldUsername
		m.username.Focus()
		m.password.Blur()
	}
	return m, nil
}

func (m Model) mountCmd() tea.Cmd {
	board := m.board
	return func() tea.Msg {
		return loadedMsg{err: board.Mount(context.Background())}
	}
}

// updateSignIn handles key presses on the sign-in screen
func (m Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || key.Matches(msg, keys.Escape) {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Up), msg.String() == "down":
		m.toggleFocus()
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.focus == fieldUsername {
			m.toggleFocus()
			return m, nil
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == fieldUsername {
		m.focus = fieldPassword
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focus = fieldUsername
		m.password.Blur()
		m.username.Focus()
	}
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	creds := model.Credentials{
		Username: strings.TrimSpace(m.username.Value()),
		Password: m.password.Value(),
	}
	m.busy = true
	m.setMessage(resource.LevelInfo, "Signing in...")

	provider := m.provider
	return m, func() tea.Msg {
		_, err := provider.Login(context.Background(), creds)
		return loginDoneMsg{err: err}
	}
}

// updateDashboard handles key presses on the dashboard
func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeAddTask:
		return m.updateInput(msg)
	case ModeConfirmDelete:
		return m.updateConfirm(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.board.Tasks())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if t, ok := m.currentTask(); ok {
			return m.runOp(func(ctx context.Context) error {
				_, err := m.board.Toggle(ctx, t.ID)
				return err
			})
		}

	case key.Matches(msg, keys.Delete):
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		if m.opts.ConfirmDelete {
			m.mode = ModeConfirmDelete
			m.pending = t.ID
			return m, nil
		}
		return m.deleteTask(t.ID)

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Logout):
		provider := m.provider
		return m, func() tea.Msg {
			provider.Logout()
			return nil
		}

	case key.Matches(msg, keys.Reload):
		m.busy = true
		board := m.board
		return m, func() tea.Msg {
			return loadedMsg{err: board.Reload(context.Background())}
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		title := strings.TrimSpace(m.input.Value())
		m.mode = ModeNormal
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		return m.runOp(func(ctx context.Context) error {
			_, err := m.board.Add(ctx, title)
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if key.Matches(msg, keys.Yes) {
		return m.deleteTask(m.pending)
	}
	m.setMessage(resource.LevelInfo, "Cancelled")
	return m, nil
}

func (m Model) deleteTask(id int64) (tea.Model, tea.Cmd) {
	return m.runOp(func(ctx context.Context) error {
		return m.board.Delete(ctx, id)
	})
}

// runOp performs a board mutation off the update loop
func (m Model) runOp(fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg {
		return opDoneMsg{err: fn(context.Background())}
	}
}
