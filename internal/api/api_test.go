package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/textworld/internal/api"
	"github.com/mcoot/textworld/internal/api/apierr"
	"github.com/mcoot/textworld/internal/api/response"
	"github.com/mcoot/textworld/internal/factory"
	"github.com/mcoot/textworld/internal/middleware"
	"github.com/mcoot/textworld/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLimit(t, middleware.RateLimitConfig{})
}

func newTestServerWithLimit(t *testing.T, limit middleware.RateLimitConfig) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Commands:  app.Commands,
		Online:    app.GameController,
		IDs:       app.IDs,
		RateLimit: limit,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) create(t *testing.T, name, password string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": name, "password": password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func decodeText(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.TextResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Result
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, "Alice", "pw")

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Online)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestCreateAndJoin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{
		"name":     "Alice",
		"password": "secret",
		"recovery": []map[string]string{{"question": "pet?", "answer": "cat"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"SUCCESS"}`, rr.Body.String())

	// duplicate, case-insensitive
	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "USERNAME_TAKEN", decodeError(t, rr).Code)

	// already logged in
	rr = ts.request(http.MethodPost, "/api/v1/players/join", map[string]any{"name": "Alice", "password": "secret"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/leave", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/join", map[string]any{"name": "Alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "BAD_CREDENTIALS", decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/join", map[string]any{"name": "Alice", "password": "secret"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": "bad-name", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "BAD_USERNAME_FORMAT", decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/join", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameplayRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, "Alice", "pw")

	rr := ts.request(http.MethodGet, "/api/v1/players/Alice/look", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeText(t, rr), "The Courtyard")

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/right", nil)
	assert.Equal(t, "You are now facing east.", decodeText(t, rr))
	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/left", nil)
	assert.Equal(t, "You are now facing north.", decodeText(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/move", map[string]int{"distance": 0})
	assert.Equal(t, "You stay where you are.", decodeText(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/say", map[string]string{"message": "hi"})
	assert.Equal(t, "Alice says: hi", decodeText(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/pickup", map[string]string{"target": "lamp"})
	assert.Equal(t, "You pick up the lamp.", decodeText(t, rr))
	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/pickup-all", nil)
	assert.Equal(t, "You pick up: coin.", decodeText(t, rr))
	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/inventory", nil)
	assert.Equal(t, "You are carrying: lamp, coin.", decodeText(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/move", map[string]int{"distance": 1})
	assert.Contains(t, decodeText(t, rr), "You moved 1 step to The Great Hall.")
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/Ghost/look", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/Ghost/heartbeat", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/Ghost/leave", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFriendRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, "Alice", "pw")
	ts.create(t, "Bob", "pw")

	rr := ts.request(http.MethodPost, "/api/v1/players/Alice/friends", map[string]string{"friend": "Bob"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/friends/online", nil)
	assert.Equal(t, "Online friends: Bob.", decodeText(t, rr))

	rr = ts.request(http.MethodDelete, "/api/v1/players/Alice/friends/Bob", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodDelete, "/api/v1/players/Alice/friends/Bob", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPasswordAndRecoveryRoutes(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{
		"name":     "Alice",
		"password": "old",
		"recovery": []map[string]string{{"question": "pet?", "answer": "cat"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPut, "/api/v1/players/Alice/password", map[string]string{"password": "new"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/password/verify", map[string]string{"password": "new"})
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players/Alice/password/verify", map[string]string{"password": "old"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/recovery/1/question", nil)
	assert.Equal(t, "pet?", decodeText(t, rr))
	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/recovery/1/answer", nil)
	assert.Equal(t, "cat", decodeText(t, rr))
	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/recovery/2/question", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/recovery/one/question", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWhiteboardRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, "Alice", "pw")

	rr := ts.request(http.MethodPut, "/api/v1/players/Alice/whiteboard", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/whiteboard", nil)
	assert.Equal(t, "The whiteboard reads:\nhello", decodeText(t, rr))

	rr = ts.request(http.MethodDelete, "/api/v1/players/Alice/whiteboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/players/Alice/whiteboard", nil)
	assert.Equal(t, "The whiteboard is blank.", decodeText(t, rr))
}

func TestDeleteAccountRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.create(t, "Alice", "pw")

	rr := ts.request(http.MethodDelete, "/api/v1/players/Alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.app.Accounts.Exists("Alice"))

	rr = ts.request(http.MethodPost, "/api/v1/players/join", map[string]any{"name": "Alice", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServerWithLimit(t, middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, ts.request(http.MethodGet, "/api/v1/health", nil).Code)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodGet, "/api/v1/health", nil).Code)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, apierr.CodeRateLimited, decodeError(t, rr).Code)
}

func TestServerBindsBeforeServing(t *testing.T) {
	ts := newTestServer(t)
	srv := api.NewServer(ts.handler, api.ServerConfig{Host: "127.0.0.1", ShutdownTimeout: time.Second}, testutil.NopLogger())
	require.NoError(t, srv.Listen())
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestServerPortInUse(t *testing.T) {
	ts := newTestServer(t)
	first := api.NewServer(ts.handler, api.ServerConfig{Host: "127.0.0.1"}, testutil.NopLogger())
	require.NoError(t, first.Listen())
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	n, err := strconv.Atoi(port)
	require.NoError(t, err)

	second := api.NewServer(ts.handler, api.ServerConfig{Host: "127.0.0.1", Port: n}, testutil.NopLogger())
	assert.Error(t, second.Listen())
}
