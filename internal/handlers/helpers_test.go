package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/services"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

const testGuildID = "100200300"

func init() {
	gin.SetMode(gin.TestMode)
}

// newDiscordServices wires guild, message and content services against a
// fake Discord API.
func newDiscordServices(t *testing.T, handler http.Handler, cfg *config.DiscordConfig) (*services.GuildService, *services.MessageService, *services.ContentService) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if cfg == nil {
		cfg = &config.DiscordConfig{GuildID: testGuildID}
	}
	api := discordapi.NewClient("token", logger.NewNop(), discordapi.WithBaseURL(server.URL))
	guilds := services.NewGuildService(api, cfg, logger.NewNop())
	messages := services.NewMessageService(api, guilds, logger.NewNop())
	content := services.NewContentService(api, cfg, logger.NewNop())
	return guilds, messages, content
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
