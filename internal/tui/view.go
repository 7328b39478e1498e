package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/todoisland/internal/resource"
)

// View renders the UI
func (m Model) View() string {
	switch m.screen {
	case ScreenSignIn:
		return m.renderSignIn()
	case ScreenDashboard:
		return m.renderDashboard()
	default:
		return "Loading..."
	}
}

func (m Model) renderSignIn() string {
	content := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("TodoIsland") + "\n"
	content += HelpStyle.Render("Sign in to your account") + "\n\n"
	content += "Username or email\n" + m.username.View() + "\n\n"
	content += "Password\n" + m.password.View() + "\n\n"

	if m.message != "" {
		content += messageStyle(m.messageLevel).Render(m.message) + "\n\n"
	}
	content += HelpStyle.Render("tab:next field  enter:sign in  esc:quit") + "\n"
	content += HelpStyle.Render("No account? Run: todo auth register")

	modal := ModalStyle.Render(content)
	if m.width == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func (m Model) renderDashboard() string {
	var main string
	switch m.mode {
	case ModeHelp:
		main = m.renderHelp()
	case ModeAddTask:
		main = m.place(m.renderModal())
	case ModeConfirmDelete:
		main = m.place(m.renderConfirm())
	default:
		main = m.renderTaskList()
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) place(modal string) string {
	if m.width == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderTaskList() string {
	width := m.width
	if width < 40 {
		width = 40
	}

	greeting := "My tasks"
	if u := m.provider.Snapshot().User; u != nil {
		greeting = fmt.Sprintf("Hi, %s", u.DisplayName())
	}
	remaining, completed := m.board.Counts()

	s := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(greeting)
	s += "  " + HelpStyle.Render(time.Now().Format("Mon Jan 2")) + "\n"
	s += HelpStyle.Render(fmt.Sprintf("%d remaining · %d completed", remaining, completed)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width-6)) + "\n\n"

	list := m.visibleTasks()
	if len(list) == 0 {
		if m.board.Loading() {
			s += HelpStyle.Render("  Loading tasks...")
		} else {
			s += HelpStyle.Render("  No tasks. Press 'a' to add one.")
		}
	}

	for i, t := range list {
		cursor := "  "
		style := TaskItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}

		icon := "[ ]"
		if t.Completed {
			icon = "[x]"
			style = TaskDoneStyle
		}

		s += style.Render(fmt.Sprintf("%s%s %s", cursor, icon, truncate(t.Title, width-14))) + "\n"
	}

	height := m.height - 2
	if height < 0 {
		height = 0
	}
	return TaskListStyle.Width(width).Height(height).Render(s)
}

func (m Model) renderStatusBar() string {
	help := "a:add  x:done  d:del  r:reload  L:logout  ?:help  q:quit"
	if m.message != "" {
		help = messageStyle(m.messageLevel).Render(m.message)
	}
	if m.busy {
		help += "  " + HelpStyle.Render("…")
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	content := lipgloss.NewStyle().Bold(true).Render("Add Task") + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderConfirm() string {
	title := fmt.Sprintf("#%d", m.pending)
	for _, t := range m.board.Tasks() {
		if t.ID == m.pending {
			title = fmt.Sprintf("%q", truncate(t.Title, 40))
		}
	}
	content := lipgloss.NewStyle().Bold(true).Foreground(ErrorColor).Render("Delete task?") + "\n\n"
	content += title + "\n\n"
	content += HelpStyle.Render("y:delete  any other key:cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add task        │
│  x/Enter Toggle done     │
│  d       Delete          │
│  r       Reload          │
│                          │
│  Other                   │
│  ─────                   │
│  L       Logout          │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	if m.width == 0 {
		return help
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

func messageStyle(level resource.NoticeLevel) lipgloss.Style {
	switch level {
	case resource.LevelError:
		return ErrorStyle
	case resource.LevelSuccess:
		return SuccessStyle
	default:
		return HelpStyle
	}
}
