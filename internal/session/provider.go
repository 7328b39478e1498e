package session

import (
	"context"
	"sync"

	"github.com/existflow/todoisland/internal/model"
)

// State is what views render from
type State struct {
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
}

// Provider is the process-wide session state container. Views read
// Snapshot and re-render on Subscribe callbacks.
type Provider struct {
	store *Store

	mu        sync.Mutex
	state     State
	inited    bool
	version   uint64 // bumped by every store transition
	nextSubID int
	subs      map[int]func(State)

	unsubscribe func()
}

// NewProvider creates a provider in the loading state
func NewProvider(store *Store) *Provider {
	p := &Provider{
		store: store,
		state: State{IsLoading: true},
		subs:  make(map[int]func(State)),
	}
	p.unsubscribe = store.Subscribe(p.onSession)
	return p
}

// Init rehydrates from the persisted record. Only the first call has effect.
func (p *Provider) Init() {
	p.mu.Lock()
	if p.inited {
		p.mu.Unlock()
		return
	}
	version := p.version
	p.mu.Unlock()

	sess := p.store.Current()

	p.mu.Lock()
	if p.inited {
		p.mu.Unlock()
		return
	}
	p.inited = true
	if p.version == version {
		p.state = stateOf(sess)
	}
	// A transition during the read is newer than sess
	p.state.IsLoading = false
	state := p.state
	p.mu.Unlock()

	p.notify(state)
}

// Close detaches the provider from the store
func (p *Provider) Close() {
	p.unsubscribe()
}

// Store returns the underlying session store
func (p *Provider) Store() *Store {
	return p.store
}

// Snapshot returns the current state
func (p *Provider) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for every state change
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) Login(ctx context.Context, creds model.Credentials) (*Session, error) {
	return p.store.Login(ctx, creds)
}

func (p *Provider) Register(ctx context.Context, reg model.Registration) (*Session, error) {
	return p.store.Register(ctx, reg)
}

func (p *Provider) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	return p.store.GoogleLogin(ctx, idToken)
}

func (p *Provider) Logout() {
	p.store.Logout()
}

// onSession follows store transitions. Transitions that arrive before Init
// are applied but keep IsLoading until Init runs.
func (p *Provider) onSession(sess Session) {
	p.mu.Lock()
	next := stateOf(sess)
	next.IsLoading = !p.inited
	p.state = next
	p.version++
	p.mu.Unlock()

	p.notify(next)
}

func (p *Provider) notify(state State) {
	p.mu.Lock()
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func stateOf(sess Session) State {
	st := State{IsAuthenticated: sess.IsAuthenticated()}
	if st.IsAuthenticated {
		st.User = sess.User
	}
	return st
}
