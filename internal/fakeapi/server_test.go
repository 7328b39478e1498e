package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/existflow/todoisland/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url, token string, in, out any) int {
	t.Helper()
	var body bytes.Buffer
	if in != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(in))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, ts *httptest.Server, username string) model.AuthResponse {
	t.Helper()
	var auth model.AuthResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "",
		registerRequest{Username: username, Email: username + "@example.com", Password: "secret1"}, &auth)
	require.Equal(t, http.StatusOK, status)
	return auth
}

func TestRegisterAndLogin(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	auth := register(t, ts, "ada")
	assert.NotEmpty(t, auth.AccessToken)
	require.NotNil(t, auth.User)
	assert.Equal(t, "ada", auth.User.Username)

	var login model.AuthResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", loginRequest{Username: "ada@example.com", Password: "secret1"}, &login)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, auth.User.ID, login.User.ID)

	status = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", loginRequest{Username: "ada", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister_Rejections(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	register(t, ts, "ada")

	tests := []struct {
		name string
		req  registerRequest
		want int
	}{
		{"duplicate username", registerRequest{"ADA", "other@example.com", "secret1"}, http.StatusConflict},
		{"duplicate email", registerRequest{"bob", "ada@example.com", "secret1"}, http.StatusConflict},
		{"short password", registerRequest{"bob", "bob@example.com", "12345"}, http.StatusBadRequest},
		{"missing username", registerRequest{"", "bob@example.com", "secret1"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", tt.req, nil))
		})
	}
}

func TestGoogleLogin_CreatesThenReusesUser(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "g-123",
		"email":   "grace@example.com",
		"name":    "Grace Hopper",
		"picture": "https://example.com/g.png",
	}).SignedString([]byte("google-does-not-matter"))
	require.NoError(t, err)

	var first, second model.AuthResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/auth/google", "", googleRequest{IDToken: idToken}, &first))
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/auth/google", "", googleRequest{IDToken: idToken}, &second))

	assert.Equal(t, "Grace Hopper", first.User.Name)
	assert.Equal(t, "g-123", first.User.GoogleID)
	assert.Equal(t, first.User.ID, second.User.ID)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodPost, ts.URL+"/auth/google", "", googleRequest{IDToken: "garbage"}, nil))
}

func TestTasks_CRUDAndOwnership(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	ada := register(t, ts, "ada").AccessToken
	bob := register(t, ts, "bob").AccessToken

	var created model.Task
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, ts.URL+"/tasks", ada, model.NewTask{Title: "Buy milk"}, &created))
	assert.False(t, created.Completed)
	assert.Equal(t, "Buy milk", created.Title)

	var toggled model.Task
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/tasks/1/toggle", ada, nil, &toggled))
	assert.True(t, toggled.Completed)

	var bobs []model.Task
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/tasks", bob, nil, &bobs))
	assert.Empty(t, bobs)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, ts.URL+"/tasks/1", bob, nil, nil))

	title := "Buy oat milk"
	var updated model.Task
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, ts.URL+"/tasks/1", ada, model.TaskPatch{Title: &title}, &updated))
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.Completed)

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, ts.URL+"/tasks/1", ada, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, ts.URL+"/tasks/1/toggle", ada, nil, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/tasks", ada, model.NewTask{Title: "  "}, nil))
}

func TestTasks_RequireValidToken(t *testing.T) {
	_, ts := newTestServer(t, Options{TokenTTL: time.Millisecond})
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, ts.URL+"/tasks", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, ts.URL+"/tasks", "not-a-jwt", nil, nil))

	token := register(t, ts, "ada").AccessToken
	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, ts.URL+"/tasks", token, nil, nil), "expired")

	s, live := newTestServer(t, Options{})
	fresh := register(t, live, "bob").AccessToken
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, live.URL+"/tasks", fresh, nil, nil))
	s.RevokeAll()
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, live.URL+"/tasks", fresh, nil, nil), "revoked")
}

func TestFaultsAndHealth(t *testing.T) {
	s, ts := newTestServer(t, Options{})

	var health map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/actuator/health", "", nil, &health))
	assert.Equal(t, "UP", health["status"])

	s.SetDown(true)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, http.MethodGet, ts.URL+"/actuator/health", "", nil, nil))
	s.SetDown(false)

	s.FailNext(http.StatusInternalServerError)
	assert.Equal(t, http.StatusInternalServerError, doJSON(t, http.MethodGet, ts.URL+"/actuator/health", "", nil, nil))
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/actuator/health", "", nil, nil))

	reqs := s.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "/actuator/health", reqs[len(reqs)-1].Path)
}
