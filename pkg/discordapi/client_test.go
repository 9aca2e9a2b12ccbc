package discordapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/sanctyr/site/middleware/log"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(token, logger.NewNop(), WithBaseURL(server.URL))
}

func TestClient_Get_JSON(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Sanctyr"}`))
	}), "token-123")

	data, err := client.Get(context.Background(), "/guilds/1")
	require.NoError(t, err)

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "Sanctyr", payload.Name)
	assert.Equal(t, "Bot token-123", gotAuth)
}

func TestClient_Get_NonJSONSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}), "token")

	data, err := client.Get(context.Background(), "/anything")
	require.NoError(t, err)
	assert.Nil(t, data, "non-JSON 2xx should acknowledge without a payload")
}

func TestClient_Get_UpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing access", http.StatusForbidden)
	}), "token")

	_, err := client.Get(context.Background(), "/guilds/1/roles")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "/guilds/1/roles", apiErr.Endpoint)
	assert.False(t, IsNotFound(err))
}

func TestClient_IsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown member", http.StatusNotFound)
	}), "token")

	_, err := client.Get(context.Background(), "/guilds/1/members/42")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_WidgetDisabled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "token")

	_, err := client.Get(context.Background(), "/guilds/1/widget.json")
	assert.ErrorIs(t, err, ErrWidgetDisabled)
}

func TestClient_MissingToken(t *testing.T) {
	var widgetAuth string
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		widgetAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"presence_count":3}`))
	}), "")

	// authenticated endpoints fail fast without a token
	_, err := client.Get(context.Background(), "/guilds/1/roles")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)

	// the public widget endpoint still works, without an auth header
	data, err := client.Get(context.Background(), "/guilds/1/widget.json")
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, widgetAuth)
}

func TestClient_Post_SendsBody(t *testing.T) {
	var gotBody map[string]string
	var gotContentType string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"99"}`))
	}), "token")

	data, err := client.Post(context.Background(), "/channels/5/messages", map[string]string{"content": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "hello", gotBody["content"])
	assert.JSONEq(t, `{"id":"99"}`, string(data))
}
