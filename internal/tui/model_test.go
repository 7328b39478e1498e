package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/apperr"
	"github.com/existflow/todoisland/internal/dashboard"
	"github.com/existflow/todoisland/internal/fakeapi"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/session"
	"github.com/existflow/todoisland/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *fakeapi.Server
	bridge  *Bridge
	creds   *session.MemoryStore
	board   *dashboard.Board
	model   Model
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	backend := fakeapi.New(fakeapi.Options{})
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	// seed an account
	err := api.New(ts.URL, nil).Do(context.Background(), http.MethodPost, "/auth/register",
		model.Registration{Username: "ada", Email: "ada@example.com", Password: "secret1"}, nil)
	require.NoError(t, err)

	bridge := NewBridge()
	creds := session.NewMemoryStore()
	client := api.New(ts.URL, nil)
	store := session.NewStore(client, creds, bridge)
	t.Cleanup(store.Close)

	provider := session.NewProvider(store)
	board := dashboard.New(tasks.New(client, bridge), dashboard.WithNotifier(bridge))

	m := NewModel(provider, board, bridge, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &fixture{backend: backend, bridge: bridge, creds: creds, board: board, model: next.(Model)}
}

// send feeds msg and runs a returned command once, feeding its result back
func (f *fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		next, _ = f.model.Update(out)
		f.model = next.(Model)
	}
}

// press feeds a key without running its command
func (f *fixture) press(t *testing.T, k tea.KeyMsg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(k)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) typeText(t *testing.T, s string) {
	t.Helper()
	f.press(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// drain feeds every queued bridge event
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	for {
		select {
		case msg := <-f.bridge.events:
			f.send(t, msg)
		default:
			return
		}
	}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.send(t, f.model.initSession()())
	f.drain(t)
}

func (f *fixture) signIn(t *testing.T, password string) {
	t.Helper()
	f.typeText(t, "ada")
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	f.typeText(t, password)
	cmd := f.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	f.send(t, cmd())
	f.drain(t)
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestStartsLoadingThenSignIn(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, ScreenLoading, f.model.Screen())
	assert.Equal(t, "Loading...", f.model.View())

	f.start(t)
	assert.Equal(t, ScreenSignIn, f.model.Screen())
	assert.Contains(t, f.model.View(), "Sign in")
}

func TestSignInOpensDashboard(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)
	f.signIn(t, "secret1")

	assert.Equal(t, ScreenDashboard, f.model.Screen())
	assert.True(t, f.board.Mounted())
	assert.Contains(t, f.model.View(), "Hi, ada")
	assert.Contains(t, f.model.View(), "No tasks")
}

func TestWrongPasswordStaysOnSignIn(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)
	f.signIn(t, "nope-nope")

	assert.Equal(t, ScreenSignIn, f.model.Screen())
	assert.Equal(t, apperr.KindInvalidCredentials.Message(), f.model.Message())
	assert.Empty(t, f.creds.Entries())
}

func TestDashboardAddToggleDelete(t *testing.T) {
	f := newFixture(t, Options{ConfirmDelete: true})
	f.start(t)
	f.signIn(t, "secret1")

	// add
	f.press(t, runeKey("a"))
	f.typeText(t, "Buy milk")
	f.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	f.drain(t)
	require.Len(t, f.board.Tasks(), 1)
	assert.Equal(t, dashboard.NoticeCreated, f.model.Message())
	assert.Contains(t, f.model.View(), "Buy milk")

	// toggle
	f.send(t, runeKey("x"))
	f.drain(t)
	assert.True(t, f.board.Tasks()[0].Completed)
	assert.Equal(t, dashboard.NoticeCompleted, f.model.Message())

	// delete, cancelled then confirmed
	f.send(t, runeKey("d"))
	assert.Contains(t, f.model.View(), "Delete task?")
	f.send(t, runeKey("n"))
	assert.Len(t, f.board.Tasks(), 1)

	f.send(t, runeKey("d"))
	f.send(t, runeKey("y"))
	f.drain(t)
	assert.Empty(t, f.board.Tasks())
	assert.Equal(t, dashboard.NoticeDeleted, f.model.Message())
}

func TestRejectedTokenReturnsToSignIn(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)
	f.signIn(t, "secret1")
	require.Equal(t, ScreenDashboard, f.model.Screen())

	f.backend.RevokeAll()
	f.send(t, runeKey("r"))
	f.drain(t)

	assert.Equal(t, ScreenSignIn, f.model.Screen())
	assert.False(t, f.board.Mounted())
	assert.Empty(t, f.creds.Entries())
}

func TestLogoutKey(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)
	f.signIn(t, "secret1")

	f.send(t, runeKey("L"))
	f.drain(t)
	assert.Equal(t, ScreenSignIn, f.model.Screen())
}

func TestHelpToggles(t *testing.T) {
	f := newFixture(t, Options{})
	f.start(t)
	f.signIn(t, "secret1")

	f.send(t, runeKey("?"))
	assert.True(t, strings.Contains(f.model.View(), "Keyboard Shortcuts"))
	f.send(t, runeKey("z"))
	assert.False(t, strings.Contains(f.model.View(), "Keyboard Shortcuts"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ñañ...", truncate("ñañañañaña", 6))
}
