package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/apperr"
	"github.com/existflow/todoisland/internal/fakeapi"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskID(t *testing.T) {
	id, err := parseTaskID("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := parseTaskID(bad)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), bad)
	}
}

func TestPrintTasks(t *testing.T) {
	ordered := []model.Task{
		{ID: 2, Title: "Write report"},
		{ID: 1, Title: "Buy milk", Completed: true},
	}

	var buf bytes.Buffer
	printTasks(&buf, ordered, false)
	out := buf.String()
	assert.Contains(t, out, "1 pending, 1 done")
	assert.Contains(t, out, "[ ]  2       Write report")
	assert.NotContains(t, out, "Buy milk")

	buf.Reset()
	printTasks(&buf, ordered, true)
	assert.Contains(t, buf.String(), "[x]  1       Buy milk")
}

func TestPrintTask_TruncatesLongTitle(t *testing.T) {
	var buf bytes.Buffer
	printTask(&buf, model.Task{ID: 1, Title: strings.Repeat("é", 60)})
	assert.Contains(t, buf.String(), strings.Repeat("é", 45)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("é", 46))
}

func TestPrompter_NonTerminal(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  ada \nsecret1\ny\n"), &out)

	name, err := p.line("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	pass, err := p.secret("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret1", pass)

	assert.True(t, p.confirm("Delete?"))
	assert.False(t, p.confirm("Again?"), "EOF answers no")
	assert.Contains(t, out.String(), "Delete? [y/N]: ")
}

func TestPrompter_LastLineWithoutNewline(t *testing.T) {
	p := newPrompter(strings.NewReader("n"), &bytes.Buffer{})
	assert.False(t, p.confirm("Delete?"))

	p = newPrompter(strings.NewReader("bob"), &bytes.Buffer{})
	got, err := p.line("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "bob", got)

	_, err = p.line("Again: ")
	assert.Error(t, err)
}

func TestCLINavigator(t *testing.T) {
	backend := fakeapi.New(fakeapi.Options{})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	var buf bytes.Buffer
	nav := newCLINavigator(&buf)
	client := api.New(srv.URL, nil)
	store := session.NewStore(client, session.NewMemoryStore(), nav)
	defer store.Close()
	nav.follow(store)
	ctx := context.Background()

	_, err := store.Register(ctx, model.Registration{Username: "ada", Email: "ada@example.com", Password: "secret1", Confirm: "secret1"})
	require.NoError(t, err)
	store.Logout()
	buf.Reset()

	// wrong password: rejected without a held session
	_, err = store.Login(ctx, model.Credentials{Username: "ada", Password: "wrong-password"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredentials))
	assert.Empty(t, buf.String())

	_, err = store.Login(ctx, model.Credentials{Username: "ada", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	// held token rejected by the backend
	backend.RevokeAll()
	require.Error(t, client.Do(ctx, http.MethodGet, "/tasks", nil, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "todo auth login"))
}

func TestProbe(t *testing.T) {
	backend := fakeapi.New(fakeapi.Options{})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	client := api.New(srv.URL, nil)

	var buf bytes.Buffer
	require.NoError(t, probe(context.Background(), &buf, client))
	assert.Contains(t, buf.String(), "✅ UP")
	assert.Contains(t, buf.String(), "store")

	backend.SetDown(true)
	buf.Reset()
	assert.Error(t, probe(context.Background(), &buf, client))
	assert.Contains(t, buf.String(), "❌")
}

func TestWatchHealth(t *testing.T) {
	backend := fakeapi.New(fakeapi.Options{})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, watchHealth(ctx, &buf, api.New(srv.URL, nil), "@every 1s"))
	out := buf.String()
	assert.Contains(t, out, "Watching @every 1s")
	assert.GreaterOrEqual(t, strings.Count(out, "✅ UP"), 1)
}

func TestWatchHealth_InvalidSchedule(t *testing.T) {
	err := watchHealth(context.Background(), &bytes.Buffer{}, api.New("http://127.0.0.1:1", nil), "not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}
