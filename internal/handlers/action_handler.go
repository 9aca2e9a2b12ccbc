package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanctyr/site/internal/services"
	logger "github.com/sanctyr/site/middleware/log"
)

// ActionHandler implements the site's form actions: partnership requests
// (forwarded to a Discord channel for the council) and the newsletter
// signup stub.
type ActionHandler struct {
	Messages                     *services.MessageService
	PartnershipRequestsChannelID string
	Logger                       *logger.Logger
}

func NewActionHandler(messages *services.MessageService, channelID string, log *logger.Logger) *ActionHandler {
	return &ActionHandler{Messages: messages, PartnershipRequestsChannelID: channelID, Logger: log}
}

type partnershipRequest struct {
	ServerName      string `json:"serverName" binding:"required,min=2"`
	DiscordUsername string `json:"discordUsername" binding:"required,min=2"`
	ServerLink      string `json:"serverLink" binding:"required,url"`
	PartnershipTier string `json:"partnershipTier" binding:"required"`
}

// Partnership validates the form and posts it to the partnership-requests
// channel as a formatted message.
func (h *ActionHandler) Partnership(c *gin.Context) {
	var req partnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.PartnershipRequestsChannelID == "" {
		h.Logger.Error("partnership requests channel is not configured")
		c.JSON(http.StatusServiceUnavailable,
			gin.H{"error": "Server configuration error. Could not submit request."})
		return
	}

	message := fmt.Sprintf(
		"**New Partnership Request**\n\n**Tier:** %s\n**Server Name:** %s\n**Requester's Username:** %s\n**Invite Link:** %s",
		req.PartnershipTier, req.ServerName, req.DiscordUsername, req.ServerLink,
	)

	if err := h.Messages.SendChannelMessage(c.Request.Context(), h.PartnershipRequestsChannelID, message); err != nil {
		h.Logger.Error("forwarding partnership request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway,
			gin.H{"error": "Could not send request to the council. Please try again later."})
		return
	}

	c.JSON(http.StatusOK,
		gin.H{"message": "Your partnership request has been sent to the High Council for review!"})
}

type newsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Newsletter validates the address. Persistence is delegated to a mailing
// list service and intentionally not implemented here.
func (h *ActionHandler) Newsletter(c *gin.Context) {
	var req newsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address."})
		return
	}

	h.Logger.Info("newsletter signup", zap.String("email", req.Email))
	c.JSON(http.StatusOK,
		gin.H{"message": "Thank you for joining the realm! You will be notified of updates."})
}
