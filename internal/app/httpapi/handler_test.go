package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	app "github.com/R3E-Network/social_layer/internal/app"
	"github.com/R3E-Network/social_layer/pkg/logger"
	"github.com/R3E-Network/social_layer/pkg/testutil"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	application, err := app.New(app.Stores{}, nil)
	require.NoError(t, err)
	return NewHandler(application, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func register(t *testing.T, h http.Handler, username string) int64 {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/register", map[string]any{"username": username, "password": "password"})
	require.Equal(t, http.StatusOK, resp.Code)
	return gjson.Get(resp.Body.String(), "account_id").Int()
}

func postMessage(t *testing.T, h http.Handler, author int64, text string) gjson.Result {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/messages", map[string]any{
		"posted_by":         author,
		"message_text":      text,
		"time_posted_epoch": 1669947792,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return gjson.Parse(resp.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodPost, "/register", map[string]any{"username": "testuser1", "password": "password"})
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	id := gjson.Get(body, "account_id").Int()
	assert.Greater(t, id, int64(0))
	assert.Equal(t, "testuser1", gjson.Get(body, "username").String())
	assert.Equal(t, "password", gjson.Get(body, "password").String())

	resp = do(t, h, http.MethodPost, "/register", map[string]any{"username": "testuser1", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = do(t, h, http.MethodPost, "/login", map[string]any{"username": "testuser1", "password": "password"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, gjson.Get(resp.Body.String(), "account_id").Int())

	resp = do(t, h, http.MethodPost, "/login", map[string]any{"username": "testuser1", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, resp.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHandler(t)

	for _, payload := range []map[string]any{
		{"username": "", "password": "password"},
		{"username": "user", "password": "abc"},
		{"username": "user"},
	} {
		resp := do(t, h, http.MethodPost, "/register", payload)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "%v", payload)
		assert.Empty(t, resp.Body.String())
	}

	resp := do(t, h, http.MethodPost, "/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMessageLifecycle(t *testing.T) {
	h := newTestHandler(t)
	author := register(t, h, "author")

	resp := do(t, h, http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	created := postMessage(t, h, author, "hello")
	id := created.Get("message_id").Int()
	assert.Greater(t, id, int64(0))
	assert.Equal(t, author, created.Get("posted_by").Int())
	assert.Equal(t, int64(1669947792), created.Get("time_posted_epoch").Int())

	resp = do(t, h, http.MethodGet, fmt.Sprintf("/messages/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, created.Raw, resp.Body.String())

	resp = do(t, h, http.MethodPatch, fmt.Sprintf("/messages/%d", id), map[string]any{"message_id": id + 50, "message_text": "edited"})
	require.Equal(t, http.StatusOK, resp.Code)
	updated := gjson.Parse(resp.Body.String())
	assert.Equal(t, id, updated.Get("message_id").Int())
	assert.Equal(t, "edited", updated.Get("message_text").String())
	assert.Equal(t, author, updated.Get("posted_by").Int())
	assert.Equal(t, int64(1669947792), updated.Get("time_posted_epoch").Int())

	resp = do(t, h, http.MethodDelete, fmt.Sprintf("/messages/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, updated.Raw, resp.Body.String())

	resp = do(t, h, http.MethodGet, fmt.Sprintf("/messages/%d", id), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = do(t, h, http.MethodDelete, fmt.Sprintf("/messages/%d", id), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Body.String())
}

func TestCreateMessageRejections(t *testing.T) {
	h := newTestHandler(t)
	author := register(t, h, "author")

	for name, payload := range map[string]map[string]any{
		"empty text":     {"posted_by": author, "message_text": ""},
		"too long":       {"posted_by": author, "message_text": strings.Repeat("a", 255)},
		"unknown author": {"posted_by": author + 100, "message_text": "hi"},
	} {
		resp := do(t, h, http.MethodPost, "/messages", payload)
		assert.Equal(t, http.StatusBadRequest, resp.Code, name)
		assert.Empty(t, resp.Body.String(), name)
	}

	resp := do(t, h, http.MethodPost, "/messages", `{"posted_by":"abc","message_text":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateMessageRejections(t *testing.T) {
	h := newTestHandler(t)
	author := register(t, h, "author")
	id := postMessage(t, h, author, "original").Get("message_id").Int()

	resp := do(t, h, http.MethodPatch, fmt.Sprintf("/messages/%d", id), map[string]any{"message_text": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = do(t, h, http.MethodPatch, fmt.Sprintf("/messages/%d", id), map[string]any{"message_text": strings.Repeat("a", 255)})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = do(t, h, http.MethodPatch, fmt.Sprintf("/messages/%d", id+100), map[string]any{"message_text": "ok"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = do(t, h, http.MethodGet, fmt.Sprintf("/messages/%d", id), nil)
	assert.Equal(t, "original", gjson.Get(resp.Body.String(), "message_text").String())
}

func TestPathIDMustBeInteger(t *testing.T) {
	h := newTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		resp := do(t, h, method, "/messages/abc", map[string]any{"message_text": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.Code, method)
	}
	resp := do(t, h, http.MethodGet, "/accounts/abc/messages", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAccountMessages(t *testing.T) {
	h := newTestHandler(t)
	a := register(t, h, "a")
	b := register(t, h, "b")

	first := postMessage(t, h, a, "first")
	postMessage(t, h, b, "other")
	third := postMessage(t, h, a, "third")

	resp := do(t, h, http.MethodGet, fmt.Sprintf("/accounts/%d/messages", a), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	ids := gjson.Get(resp.Body.String(), "#.message_id").Array()
	require.Len(t, ids, 2)
	assert.Equal(t, first.Get("message_id").Int(), ids[0].Int())
	assert.Equal(t, third.Get("message_id").Int(), ids[1].Int())

	resp = do(t, h, http.MethodGet, "/accounts/9999/messages", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	resp = do(t, h, http.MethodGet, "/messages", nil)
	assert.Equal(t, int64(3), gjson.Get(resp.Body.String(), "#").Int())
}

func TestMisspelledRouteNotRegistered(t *testing.T) {
	h := newTestHandler(t)
	resp := do(t, h, http.MethodPatch, "/mesages/1", map[string]any{"message_text": "x"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStoreFailureIsServerError(t *testing.T) {
	store := testutil.NewFailingStore(errors.New("connection refused"))
	application, err := app.New(app.Stores{Accounts: store, Messages: store}, nil)
	require.NoError(t, err)
	h := NewHandler(application, nil)

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/register", map[string]any{"username": "u", "password": "password"}},
		{http.MethodPost, "/login", map[string]any{"username": "u", "password": "password"}},
		{http.MethodPost, "/messages", map[string]any{"posted_by": 1, "message_text": "x"}},
		{http.MethodGet, "/messages", nil},
		{http.MethodGet, "/messages/1", nil},
		{http.MethodPatch, "/messages/1", map[string]any{"message_text": "x"}},
		{http.MethodDelete, "/messages/1", nil},
		{http.MethodGet, "/accounts/1/messages", nil},
	}
	for _, tc := range cases {
		resp := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, resp.Code, "%s %s", tc.method, tc.path)
		assert.Empty(t, resp.Body.String())
	}

	resp := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "unavailable", gjson.Get(resp.Body.String(), "status").String())
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", gjson.Get(resp.Body.String(), "status").String())

	register(t, h, "metrics-user")
	resp = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "social_layer_accounts_total")
	assert.Contains(t, resp.Body.String(), `path="/register"`)
}

func TestTraceIDHeader(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/messages", nil)
	assert.NotEmpty(t, resp.Header().Get(TraceHeader))

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceIDInContext(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
	req.Header.Set(TraceHeader, "abc")
	withRequestContext(inner, logger.NewDefault("test")).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", seen)
}
