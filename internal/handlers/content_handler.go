package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/services"
)

// feed limits: announcements default to 10, live feed to 5, both capped so
// a query parameter cannot request an unbounded page.
const (
	defaultAnnouncementsLimit = 10
	defaultFeedLimit          = 5
	maxFeedLimit              = 50
)

// ContentHandler serves the site's Discord-sourced content: announcement
// and live-feed messages, partners and events.
type ContentHandler struct {
	Messages *services.MessageService
	Content  *services.ContentService
	Discord  *config.DiscordConfig
}

func NewContentHandler(messages *services.MessageService, content *services.ContentService, discord *config.DiscordConfig) *ContentHandler {
	return &ContentHandler{Messages: messages, Content: content, Discord: discord}
}

func (h *ContentHandler) Announcements(c *gin.Context) {
	h.channelFeed(c, h.Discord.AnnouncementsChannelID, defaultAnnouncementsLimit)
}

func (h *ContentHandler) Feed(c *gin.Context) {
	h.channelFeed(c, h.Discord.LiveFeedChannelID, defaultFeedLimit)
}

func (h *ContentHandler) channelFeed(c *gin.Context, channelID string, defaultLimit int) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxFeedLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.Messages.GetChannelMessagesWithUsers(c.Request.Context(), channelID, limit)
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *ContentHandler) Partners(c *gin.Context) {
	partners, err := h.Content.GetPartners(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

func (h *ContentHandler) Events(c *gin.Context) {
	events, err := h.Content.GetEvents(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
