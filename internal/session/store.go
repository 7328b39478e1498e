// Package session owns the authenticated session: credential persistence,
// the login flows, the reactive Provider and route guarding.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/apperr"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/model"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// Auth endpoints
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathGoogle   = "/auth/google"
)

// Session is the client's view of who is signed in
type Session struct {
	Token string
	User  *model.User
}

// IsAuthenticated reports token presence; the user payload is informational
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Store is the session state machine over Anonymous and Authenticated.
// It is the only writer of the credential record.
type Store struct {
	client *api.Client
	creds  CredentialStore
	nav    Navigator
	mapErr func(error) *apperr.Error

	unsubscribe func()

	mu        sync.Mutex
	nextSubID int
	subs      map[int]func(Session)

	// signedOut hides a record that could not be erased until the next
	// successful sign-in
	signedOut bool
}

// Option configures a Store
type Option func(*Store)

// WithErrorMapper replaces the authentication error classification
func WithErrorMapper(fn func(error) *apperr.Error) Option {
	return func(s *Store) { s.mapErr = fn }
}

// NewStore creates a store, installs it as the client's token source and
// subscribes to the client's unauthorized events. nav may be nil.
func NewStore(client *api.Client, creds CredentialStore, nav Navigator, opts ...Option) *Store {
	if nav == nil {
		nav = nopNavigator{}
	}
	s := &Store{
		client: client,
		creds:  creds,
		nav:    nav,
		mapErr: classify,
		subs:   make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	client.SetTokenSource(s)
	s.unsubscribe = client.OnUnauthorized(s.handleUnauthorized)
	return s
}

// Close detaches the store from the client's unauthorized events
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Client returns the HTTP client the store authenticates
func (s *Store) Client() *api.Client {
	return s.client
}

// Login signs in with a username or email and a password
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, apperr.Validation("Username and password are required.")
	}
	return s.authenticate(ctx, PathLogin, creds)
}

// Register creates an account. Preconditions are checked before any request.
func (s *Store) Register(ctx context.Context, reg model.Registration) (*Session, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, PathRegister, model.Registration{
		Username: strings.TrimSpace(reg.Username),
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
	})
}

func validateRegistration(reg model.Registration) error {
	if strings.TrimSpace(reg.Username) == "" || strings.TrimSpace(reg.Email) == "" ||
		reg.Password == "" || reg.Confirm == "" {
		return apperr.Validation("All fields are required.")
	}
	if reg.Password != reg.Confirm {
		return apperr.Validation("Passwords do not match.")
	}
	if utf8.RuneCountInString(reg.Password) < MinPasswordLength {
		return apperr.Validation("Password must be at least %d characters.", MinPasswordLength)
	}
	return nil
}

// GoogleLogin exchanges a Google ID token for a session
func (s *Store) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, apperr.Validation("A Google ID token is required.")
	}
	return s.authenticate(ctx, PathGoogle, model.GoogleLogin{IDToken: idToken})
}

func (s *Store) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var resp model.AuthResponse
	if err := s.client.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		appErr := s.mapErr(err)
		logger.Warn("Authentication failed",
			logger.F("path", path),
			logger.F("kind", appErr.Kind.String()),
			logger.F("status", appErr.Status))
		return nil, appErr
	}

	if resp.AccessToken == "" {
		logger.Error("Authentication response has no access token", logger.F("path", path))
		return nil, apperr.New(apperr.KindServer, http.StatusOK, errors.New("missing access_token"))
	}

	sess := Session{Token: resp.AccessToken, User: resp.User}
	if err := s.creds.Save(Record{Token: sess.Token, User: sess.User}); err != nil {
		logger.Error("Failed to persist session", logger.F("error", err))
		return nil, &apperr.Error{Kind: apperr.KindServer, Message: "Could not save the session.", Err: err}
	}
	s.mu.Lock()
	s.signedOut = false
	s.mu.Unlock()

	logger.Info("Signed in", logger.F("path", path), logger.F("user", sess.User.DisplayName()))
	s.publish(sess)
	s.nav.Navigate(RouteDashboard)
	return &sess, nil
}

// Logout erases the record and returns to sign-in. It never fails: when
// storage cannot be cleared the store still reports Anonymous.
func (s *Store) Logout() {
	s.endSession("logout")
}

func (s *Store) handleUnauthorized(ev api.Unauthorized) {
	logger.Warn("Session rejected by backend",
		logger.F("method", ev.Method),
		logger.F("path", ev.Path),
		logger.F("requestID", ev.RequestID))
	s.endSession("unauthorized")
}

func (s *Store) endSession(reason string) {
	if err := s.creds.Clear(); err != nil {
		logger.Error("Failed to clear session", logger.F("error", err), logger.F("reason", reason))
		if err := s.creds.Save(Record{}); err != nil {
			logger.Error("Failed to overwrite session", logger.F("error", err), logger.F("reason", reason))
		}
		s.mu.Lock()
		s.signedOut = true
		s.mu.Unlock()
	}
	logger.Info("Signed out", logger.F("reason", reason))
	s.publish(Session{})
	s.nav.Navigate(RouteSignIn)
}

// Current returns the persisted session, zero when Anonymous
func (s *Store) Current() Session {
	s.mu.Lock()
	signedOut := s.signedOut
	s.mu.Unlock()
	if signedOut {
		return Session{}
	}

	rec, err := s.creds.Load()
	if err != nil {
		logger.Warn("Failed to load session", logger.F("error", err))
		return Session{}
	}
	return Session{Token: rec.Token, User: rec.User}
}

// CurrentToken returns the persisted token, "" when absent
func (s *Store) CurrentToken() string {
	return s.Current().Token
}

// CurrentUser returns the persisted user, nil when absent
func (s *Store) CurrentUser() *model.User {
	return s.Current().User
}

// IsAuthenticated reports whether a token is persisted
func (s *Store) IsAuthenticated() bool {
	return s.Current().IsAuthenticated()
}

// Token implements api.TokenSource
func (s *Store) Token() string {
	return s.CurrentToken()
}

// Subscribe registers fn for every session transition. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(sess Session) {
	s.mu.Lock()
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}
