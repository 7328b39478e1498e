package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperFunc lets tests stand in for the network
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func staticToken(t string) TokenSource {
	return TokenFunc(func() string { return t })
}

func TestDo_AttachesBearerToken(t *testing.T) {
	for _, token := range []string{"abc", "eyJhbGciOiJIUzI1NiJ9.e30.sig", "t-3"} {
		t.Run(token, func(t *testing.T) {
			var got http.Header
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			c := New(srv.URL, staticToken(token))
			var out []map[string]any
			require.NoError(t, c.Do(context.Background(), http.MethodGet, "/tasks", nil, &out))

			assert.Equal(t, "Bearer "+token, got.Get("Authorization"))
			assert.Equal(t, "application/json", got.Get("Content-Type"))
			assert.NotEmpty(t, got.Get("X-Request-ID"))
		})
	}
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var auth string
	var seen bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, seen = r.Header.Get("Authorization"), true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	require.NoError(t, c.Do(context.Background(), http.MethodDelete, "/tasks/1", nil, nil))
	assert.True(t, seen)
	assert.Empty(t, auth)
}

func TestDo_TokenReadPerRequest(t *testing.T) {
	var headers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	current := "first"
	c := New(srv.URL, TokenFunc(func() string { return current }))
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil))
	current = "second"
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil))
	current = ""
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil))

	assert.Equal(t, []string{"Bearer first", "Bearer second", ""}, headers)
}

func TestDo_EncodesAndDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"title":"Buy milk","completed":false}`))
	}))
	defer srv.Close()

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	c := New(srv.URL, nil)
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/tasks", map[string]string{"title": "Buy milk"}, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Buy milk", out.Title)
}

func TestDo_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(srv.URL, nil).Do(context.Background(), http.MethodGet, "/tasks", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
	assert.False(t, IsNetwork(err))
}

func TestDo_UnauthorizedEmitsOncePerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("stale"))
	var first, second int32
	c.OnUnauthorized(func(ev Unauthorized) {
		atomic.AddInt32(&first, 1)
		assert.Equal(t, "/tasks", ev.Path)
		assert.NotEmpty(t, ev.RequestID)
	})
	unsubscribe := c.OnUnauthorized(func(Unauthorized) { atomic.AddInt32(&second, 1) })

	err := c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	status, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token expired", MessageOf(err))

	unsubscribe()
	_ = c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)

	assert.Equal(t, int32(2), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestDo_OtherStatusesDoNotEmit(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(srv.URL, staticToken("t"))
		emitted := false
		c.OnUnauthorized(func(Unauthorized) { emitted = true })

		err := c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
		got, ok := StatusOf(err)
		assert.True(t, ok)
		assert.Equal(t, status, got)
		assert.False(t, emitted, "status %d", status)
		srv.Close()
	}
}

func TestDo_NetworkError(t *testing.T) {
	hc := &http.Client{
		Timeout: time.Second,
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network down")
		}),
	}
	c := New("http://example.com", nil, WithHTTPClient(hc))
	err := c.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	_, ok := StatusOf(err)
	assert.False(t, ok)
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"bad title"}`, "bad title"},
		{`{"message":["title must not be empty","title too long"]}`, "title must not be empty, title too long"},
		{`{"error":"username or email already exists"}`, "username or email already exists"},
		{`plain text`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractMessage([]byte(tt.body)), tt.body)
	}
}
