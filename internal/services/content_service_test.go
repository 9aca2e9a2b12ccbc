package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

func embedMessage(embed models.MessageEmbed) models.ChannelMessage {
	return models.ChannelMessage{
		ID:     "m1",
		Author: models.DiscordUser{ID: "1", Username: "admin"},
		Embeds: []models.MessageEmbed{embed},
	}
}

func TestParsePartner_MarkdownLink(t *testing.T) {
	partner, _ := ParsePartner(embedMessage(models.MessageEmbed{
		Title:       "Emberfall",
		Description: "An allied realm.",
		Image:       &models.EmbedImage{URL: "https://cdn.example/emberfall.png"},
		Fields: []models.EmbedField{
			{Name: "Invite", Value: "Join here: [Click](https://discord.gg/abc123)"},
		},
	}))

	require.NotNil(t, partner)
	assert.Equal(t, "Emberfall", partner.Name)
	assert.Equal(t, "https://discord.gg/abc123", partner.JoinLink)
	assert.Equal(t, "An allied realm.", partner.Description)
}

func TestParsePartner_BareLink(t *testing.T) {
	partner, _ := ParsePartner(embedMessage(models.MessageEmbed{
		Title: "Emberfall",
		Image: &models.EmbedImage{URL: "https://cdn.example/emberfall.png"},
		Fields: []models.EmbedField{
			{Name: "Invite", Value: "  https://discord.gg/xyz789  "},
		},
	}))

	require.NotNil(t, partner)
	assert.Equal(t, "https://discord.gg/xyz789", partner.JoinLink)
}

func TestParsePartner_NoInviteDefaultsToHash(t *testing.T) {
	partner, _ := ParsePartner(embedMessage(models.MessageEmbed{
		Title: "Emberfall",
		Image: &models.EmbedImage{URL: "https://cdn.example/emberfall.png"},
	}))

	require.NotNil(t, partner)
	assert.Equal(t, "#", partner.JoinLink)
	assert.Equal(t, []string{}, partner.Tags)
}

func TestParsePartner_Tags(t *testing.T) {
	partner, _ := ParsePartner(embedMessage(models.MessageEmbed{
		Title: "Emberfall",
		Image: &models.EmbedImage{URL: "https://cdn.example/emberfall.png"},
		Fields: []models.EmbedField{
			{Name: "Tags", Value: "RP, Gaming, , Art "},
		},
	}))

	require.NotNil(t, partner)
	assert.Equal(t, []string{"RP", "Gaming", "Art"}, partner.Tags)
}

func TestParsePartner_Discards(t *testing.T) {
	tests := []struct {
		name string
		msg  models.ChannelMessage
	}{
		{"no embeds", models.ChannelMessage{ID: "m1"}},
		{"missing title", embedMessage(models.MessageEmbed{
			Image: &models.EmbedImage{URL: "https://cdn.example/x.png"},
		})},
		{"missing image", embedMessage(models.MessageEmbed{Title: "Emberfall"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partner, reason := ParsePartner(tt.msg)
			assert.Nil(t, partner)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestParseEvent(t *testing.T) {
	event, _ := ParseEvent(embedMessage(models.MessageEmbed{
		Title:       "Grand Tournament",
		Description: "Duels at dawn.",
		Image:       &models.EmbedImage{URL: "https://cdn.example/tourney.png"},
		Fields: []models.EmbedField{
			{Name: "Tags", Value: "PvP"},
			{Name: "Read More", Value: "[Details](https://example.com/tourney)"},
		},
	}))

	require.NotNil(t, event)
	assert.Equal(t, "Grand Tournament", event.Title)
	assert.Equal(t, "PvP", event.Category)
	assert.Equal(t, "https://example.com/tourney", event.ReadMoreLink)
}

func TestParseEvent_BareReadMoreLink(t *testing.T) {
	event, _ := ParseEvent(embedMessage(models.MessageEmbed{
		Title:       "Grand Tournament",
		Description: "Duels at dawn.",
		Image:       &models.EmbedImage{URL: "https://cdn.example/tourney.png"},
		Fields: []models.EmbedField{
			{Name: "Link", Value: "see https://example.com/tourney for the bracket"},
		},
	}))

	require.NotNil(t, event)
	assert.Equal(t, "https://example.com/tourney", event.ReadMoreLink)
}

func TestParseEvent_DefaultsAndDiscards(t *testing.T) {
	event, _ := ParseEvent(embedMessage(models.MessageEmbed{
		Title:       "Grand Tournament",
		Description: "Duels at dawn.",
		Image:       &models.EmbedImage{URL: "https://cdn.example/tourney.png"},
	}))
	require.NotNil(t, event)
	assert.Equal(t, "General", event.Category)
	assert.Empty(t, event.ReadMoreLink)

	event, reason := ParseEvent(embedMessage(models.MessageEmbed{
		Title: "Grand Tournament",
		Image: &models.EmbedImage{URL: "https://cdn.example/tourney.png"},
	}))
	assert.Nil(t, event, "description is required")
	assert.NotEmpty(t, reason)
}

func newTestContentService(t *testing.T, handler http.Handler, cfg *config.DiscordConfig) *ContentService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := discordapi.NewClient("token", logger.NewNop(), discordapi.WithBaseURL(server.URL))
	return NewContentService(api, cfg, logger.NewNop())
}

func TestGetPartners_SkipsUnparseableMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels/900/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "m1", "author": map[string]any{"id": "1"}, "content": "plain chatter"},
			{
				"id":     "m2",
				"author": map[string]any{"id": "1"},
				"embeds": []map[string]any{{
					"title": "Emberfall",
					"image": map[string]any{"url": "https://cdn.example/emberfall.png"},
					"fields": []map[string]any{
						{"name": "Invite", "value": "https://discord.gg/abc"},
					},
				}},
			},
		})
	})
	s := newTestContentService(t, mux, &config.DiscordConfig{PartnersChannelID: "900"})

	partners, err := s.GetPartners(context.Background())
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "Emberfall", partners[0].Name)
}

func TestGetPartners_EmptyChannel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels/900/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	})
	s := newTestContentService(t, mux, &config.DiscordConfig{PartnersChannelID: "900"})

	partners, err := s.GetPartners(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, partners)
	assert.Empty(t, partners)
}

func TestGetEvents_ChannelNotConfigured(t *testing.T) {
	s := newTestContentService(t, http.NewServeMux(), &config.DiscordConfig{})
	_, err := s.GetEvents(context.Background())
	assert.ErrorIs(t, err, ErrChannelNotProvided)
}
