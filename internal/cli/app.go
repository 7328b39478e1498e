package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/config"
	"github.com/existflow/todoisland/internal/db"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/existflow/todoisland/internal/session"
	"github.com/existflow/todoisland/internal/tasks"
)

// app is the wired client stack for one command
type app struct {
	client *api.Client
	store  *session.Store
	tasks  *tasks.Client
	closer io.Closer
}

// openApp builds the HTTP client, session store and task client from c
func openApp(c *config.Config, nav session.Navigator, notify resource.Notifier) (*app, error) {
	creds, closer, err := openCredentials(c)
	if err != nil {
		return nil, err
	}

	client := api.New(c.APIURL, nil, api.WithTimeout(c.RequestTimeout), api.WithUserAgent("todoisland-cli"))
	store := session.NewStore(client, creds, nav)
	if n, ok := nav.(*cliNavigator); ok {
		n.follow(store)
	}

	return &app{
		client: client,
		store:  store,
		tasks:  tasks.New(client, notify),
		closer: closer,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			logger.Warn("Failed to close credential store", logger.F("error", err))
		}
	}
}

func openCredentials(c *config.Config) (session.CredentialStore, io.Closer, error) {
	switch c.CredentialStore {
	case config.StoreSQLite:
		database, err := db.OpenDefault()
		if err != nil {
			logger.Error("Failed to open database", logger.F("error", err))
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return session.NewSQLiteStore(database), database, nil
	default:
		path, err := session.DefaultFilePath()
		if err != nil {
			return nil, nil, err
		}
		return session.NewFileStore(path), nil, nil
	}
}

// cliNavigator turns navigation requests into hints on w. The sign-in hint
// is printed only when a held session was just lost.
type cliNavigator struct {
	w io.Writer

	mu   sync.Mutex
	held bool
	lost bool
}

func newCLINavigator(w io.Writer) *cliNavigator {
	return &cliNavigator{w: w}
}

// follow tracks the session transitions of store
func (n *cliNavigator) follow(store *session.Store) {
	n.mu.Lock()
	n.held = store.IsAuthenticated()
	n.mu.Unlock()
	store.Subscribe(n.observe)
}

func (n *cliNavigator) observe(sess session.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lost = n.held && !sess.IsAuthenticated()
	n.held = sess.IsAuthenticated()
}

func (n *cliNavigator) Navigate(to session.Route) {
	n.mu.Lock()
	lost := n.lost
	n.lost = false
	n.mu.Unlock()

	if to == session.RouteSignIn && lost {
		fmt.Fprintln(n.w, "Not signed in. Sign in with: todo auth login")
	}
}
