package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/handoff-labs/handoff/internal/config"
	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/internal/store"
)

// newTestServer returns a server backed by the in-memory store and the fully
// assembled handler.
func newTestServer(t *testing.T) (server.Server, http.Handler) {
	t.Helper()

	srv := server.Server{
		Config: &config.Config{
			ListenAddr:           "127.0.0.1:0",
			LoginTokenTTLSeconds: 1800,
			SendTokenTTLSeconds:  86400,
		},
		Store:  store.NewMemory(),
		Logger: hclog.NewNullLogger(),
	}
	return srv, New(srv)
}

func do(
	t *testing.T, handler http.Handler, method, path string, params url.Values,
) *httptest.ResponseRecorder {
	t.Helper()

	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, handler http.Handler, login, password string) {
	t.Helper()

	w := do(t, handler, "POST", "/registration",
		url.Values{"login": {login}, "password": {password}})
	require.Equal(t, http.StatusOK, w.Code)
}

func loginUser(t *testing.T, handler http.Handler, login, password string) string {
	t.Helper()

	w := do(t, handler, "POST", "/login",
		url.Values{"login": {login}, "password": {password}})
	require.Equal(t, http.StatusOK, w.Code)

	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok, "login response should contain a token")
	return token
}

func addItem(t *testing.T, handler http.Handler, token, payload string) string {
	t.Helper()

	w := do(t, handler, "POST", "/items/new",
		url.Values{"item": {payload}, "token": {token}})
	require.Equal(t, http.StatusOK, w.Code)

	id, ok := decodeBody(t, w)["item_id"].(string)
	require.True(t, ok, "new item response should contain an item_id")
	return id
}

// sendItem creates a transfer and returns the send token extracted from the
// receive URL.
func sendItem(t *testing.T, handler http.Handler, token, itemID, receiver string) string {
	t.Helper()

	w := do(t, handler, "POST", "/send",
		url.Values{"item_id": {itemID}, "receiver": {receiver}, "token": {token}})
	require.Equal(t, http.StatusOK, w.Code)

	rawURL, ok := decodeBody(t, w)["url"].(string)
	require.True(t, ok, "send response should contain a url")

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	require.Equal(t, itemID, parsed.Query().Get("item_id"))

	sendToken := parsed.Query().Get("token")
	require.NotEmpty(t, sendToken)
	return sendToken
}
