package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/existflow/todoisland/internal/session"
)

// navigateMsg asks the UI to show a route
type navigateMsg struct {
	to session.Route
}

// noticeMsg carries a transient notification for the status bar
type noticeMsg struct {
	notice resource.Notice
}

// stateMsg signals a session state change
type stateMsg struct{}

// boardMsg signals a change of the task collection
type boardMsg struct{}

// eventMsg wraps a message that arrived through the Bridge
type eventMsg struct {
	inner tea.Msg
}

// Bridge carries navigation requests and notices from the client core to
// the running program. It implements session.Navigator and resource.Notifier.
type Bridge struct {
	events chan tea.Msg
}

// NewBridge creates a bridge with a buffered event queue
func NewBridge() *Bridge {
	return &Bridge{events: make(chan tea.Msg, 64)}
}

func (b *Bridge) Navigate(to session.Route) {
	b.events <- navigateMsg{to: to}
}

func (b *Bridge) Notify(n resource.Notice) {
	b.events <- noticeMsg{notice: n}
}

func (b *Bridge) stateChanged(session.State) {
	b.events <- stateMsg{}
}

func (b *Bridge) boardChanged([]model.Task) {
	b.events <- boardMsg{}
}

// wait blocks until the next event
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{inner: <-b.events}
	}
}
