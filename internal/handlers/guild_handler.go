package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanctyr/site/internal/services"
	"github.com/sanctyr/site/pkg/discordapi"
)

// GuildHandler serves aggregated guild data: stats, widget, roles and the
// booster/supporter listings.
type GuildHandler struct {
	Guilds            *services.GuildService
	BoosterRoleName   string
	SupporterRoleName string
}

func NewGuildHandler(guilds *services.GuildService, boosterRole, supporterRole string) *GuildHandler {
	return &GuildHandler{
		Guilds:            guilds,
		BoosterRoleName:   boosterRole,
		SupporterRoleName: supporterRole,
	}
}

func (h *GuildHandler) Details(c *gin.Context) {
	details, err := h.Guilds.GetGuildDetails(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"details": details})
}

func (h *GuildHandler) Widget(c *gin.Context) {
	widget, err := h.Guilds.GetGuildWidget(c.Request.Context())
	if err != nil {
		if errors.Is(err, discordapi.ErrWidgetDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"widget": widget})
}

func (h *GuildHandler) Roles(c *gin.Context) {
	roles, err := h.Guilds.GetGuildRoles(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (h *GuildHandler) Boosters(c *gin.Context) {
	h.membersWithRole(c, h.BoosterRoleName)
}

func (h *GuildHandler) Supporters(c *gin.Context) {
	h.membersWithRole(c, h.SupporterRoleName)
}

func (h *GuildHandler) membersWithRole(c *gin.Context, roleName string) {
	members, err := h.Guilds.GetMembersWithRole(c.Request.Context(), roleName)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// respondFetchError maps data-fetching failures onto HTTP statuses:
// missing configuration disables the feature (503), upstream rejections are
// a bad gateway (502), anything else is internal.
func respondFetchError(c *gin.Context, err error) {
	var apiErr *discordapi.APIError
	switch {
	case errors.Is(err, services.ErrGuildNotConfigured),
		errors.Is(err, discordapi.ErrNotConfigured),
		errors.Is(err, services.ErrEconomyNotConfigured),
		errors.Is(err, services.ErrChannelNotProvided):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
