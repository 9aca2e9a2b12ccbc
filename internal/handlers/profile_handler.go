package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/internal/services"
	"github.com/sanctyr/site/pkg/session"
)

// ProfileHandler joins the profile page's data sources: the viewer's
// session, the member's guild record and roles, and the economy profile.
type ProfileHandler struct {
	Guilds   *services.GuildService
	Economy  *services.EconomyService
	Sessions *session.Store
}

func NewProfileHandler(guilds *services.GuildService, economy *services.EconomyService, sessions *session.Store) *ProfileHandler {
	return &ProfileHandler{Guilds: guilds, Economy: economy, Sessions: sessions}
}

type profileResponse struct {
	Session        *models.SessionUser    `json:"session"`
	Member         *models.DiscordMember  `json:"member"`
	UserRoles      []models.GuildRole     `json:"userRoles"`
	EconomyProfile *models.EconomyProfile `json:"economyProfile"`
	EconomyError   string                 `json:"economyError,omitempty"`
}

// Profile fetches member, role list and economy profile concurrently. The
// member lookup is the primary source: its failure is the page's failure.
// Economy errors degrade to an inline message so the profile still renders.
func (h *ProfileHandler) Profile(c *gin.Context) {
	userID := c.Param("user_id")

	var (
		member  *models.DiscordMember
		roles   []models.GuildRole
		economy *models.EconomyProfile
		// both fetched best-effort
		rolesErr   error
		economyErr error
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		m, err := h.Guilds.GetGuildMember(ctx, userID)
		if err != nil {
			return err
		}
		member = m
		return nil
	})
	g.Go(func() error {
		roles, rolesErr = h.Guilds.GetGuildRoles(ctx)
		return nil
	})
	g.Go(func() error {
		economy, economyErr = h.Economy.GetProfile(ctx, userID)
		return nil
	})

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "This member could not be found in the realm."})
		return
	}

	resp := profileResponse{
		Session:        h.Sessions.Get(c),
		Member:         member,
		UserRoles:      []models.GuildRole{},
		EconomyProfile: economy,
	}
	if rolesErr == nil {
		// roles arrive position-sorted; filtering preserves that order
		for _, r := range roles {
			for _, id := range member.Roles {
				if r.ID == id {
					resp.UserRoles = append(resp.UserRoles, r)
					break
				}
			}
		}
		member.HighestRole = services.HighestRole(roles, member.Roles)
	}
	if economyErr != nil {
		resp.EconomyError = economyErr.Error()
	}

	c.JSON(http.StatusOK, resp)
}

type economyCommandRequest struct {
	Command string   `json:"command" binding:"required"`
	Args    []string `json:"args"`
}

// EconomyCommand runs an economy command as the session user. The session
// is the sole authorization signal; commands always target the caller's own
// profile.
func (h *ProfileHandler) EconomyCommand(c *gin.Context) {
	user := h.Sessions.Get(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req economyCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	message, err := h.Economy.RunCommand(c.Request.Context(), user.ID, req.Command, req.Args)
	if err != nil {
		if errors.Is(err, services.ErrEconomyNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		// remote refusal, surfaced verbatim
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
