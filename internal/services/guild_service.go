package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

var (
	ErrGuildNotConfigured = errors.New("discord integration not configured")
	ErrRoleNotFound       = errors.New("role not found")
)

// memberPageLimit is Discord's maximum page size for the guild members
// endpoint.
const memberPageLimit = 1000

// GuildService aggregates Discord guild data into view-ready records.
type GuildService struct {
	api    *discordapi.Client
	cfg    *config.DiscordConfig
	logger *logger.Logger
}

func NewGuildService(api *discordapi.Client, cfg *config.DiscordConfig, log *logger.Logger) *GuildService {
	return &GuildService{api: api, cfg: cfg, logger: log}
}

// GetGuildRoles returns the guild's roles sorted by position descending, so
// the first role a member holds is their highest. Callers must never run a
// highest-role computation on an unsorted list.
func (s *GuildService) GetGuildRoles(ctx context.Context) ([]models.GuildRole, error) {
	if s.cfg.GuildID == "" {
		return nil, ErrGuildNotConfigured
	}

	data, err := s.api.Get(ctx, fmt.Sprintf("/guilds/%s/roles", s.cfg.GuildID))
	if err != nil {
		return nil, err
	}

	var roles []models.GuildRole
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("decoding guild roles: %w", err)
	}

	sortRolesByPosition(roles)
	return roles, nil
}

// guildObject is the subset of Discord's guild object we consume. Counts
// are only present when the guild is fetched with_counts.
type guildObject struct {
	Name                     string `json:"name"`
	Icon                     string `json:"icon"`
	ApproximateMemberCount   int    `json:"approximate_member_count"`
	PremiumSubscriptionCount int    `json:"premium_subscription_count"`
	PremiumTier              int    `json:"premium_tier"`
}

// GetGuildDetails combines the guild object and the widget into one record.
// The two calls run in parallel; a guild-object failure is fatal, a widget
// failure only costs the online count.
func (s *GuildService) GetGuildDetails(ctx context.Context) (*models.GuildDetails, error) {
	if s.cfg.GuildID == "" {
		return nil, ErrGuildNotConfigured
	}

	var (
		guild  guildObject
		widget *models.DiscordWidgetData
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.api.Get(ctx, fmt.Sprintf("/guilds/%s?with_counts=true", s.cfg.GuildID))
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &guild)
	})
	g.Go(func() error {
		w, err := s.GetGuildWidget(ctx)
		if err != nil {
			// The widget can be disabled; online count degrades to 0.
			s.logger.Warn("could not fetch guild widget, online count may be inaccurate",
				zap.Error(err))
			return nil
		}
		widget = w
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := &models.GuildDetails{
		Name:                     guild.Name,
		MemberCount:              guild.ApproximateMemberCount,
		PremiumSubscriptionCount: guild.PremiumSubscriptionCount,
		PremiumTier:              guild.PremiumTier,
	}
	if guild.Icon != "" {
		details.IconURL = fmt.Sprintf("%s/icons/%s/%s.png", discordapi.CDNBaseURL, s.cfg.GuildID, guild.Icon)
	}
	if widget != nil {
		details.OnlineCount = widget.PresenceCount
	}
	return details, nil
}

// GetGuildWidget fetches the public widget payload. Returns
// discordapi.ErrWidgetDisabled when the widget is turned off.
func (s *GuildService) GetGuildWidget(ctx context.Context) (*models.DiscordWidgetData, error) {
	if s.cfg.GuildID == "" {
		return nil, ErrGuildNotConfigured
	}

	data, err := s.api.Get(ctx, fmt.Sprintf("/guilds/%s/widget.json", s.cfg.GuildID))
	if err != nil {
		return nil, err
	}
	var widget models.DiscordWidgetData
	if err := json.Unmarshal(data, &widget); err != nil {
		return nil, fmt.Errorf("decoding widget: %w", err)
	}
	return &widget, nil
}

// GetGuildMember fetches one member and derives display name and avatar
// URL. A 404 propagates as an error; the caller decides how to degrade.
func (s *GuildService) GetGuildMember(ctx context.Context, userID string) (*models.DiscordMember, error) {
	if s.cfg.GuildID == "" {
		return nil, ErrGuildNotConfigured
	}

	data, err := s.api.Get(ctx, fmt.Sprintf("/guilds/%s/members/%s", s.cfg.GuildID, userID))
	if err != nil {
		return nil, err
	}
	var member models.DiscordMember
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, fmt.Errorf("decoding guild member: %w", err)
	}

	member.DisplayName = DisplayName(member.Nick, member.User)
	member.AvatarURL = AvatarURL(member.User)
	return &member, nil
}

// GetMembersWithRole returns every guild member holding the named role
// (case-insensitive), decorated with display fields and highest role. The
// full member list is paginated with Discord's after-cursor convention:
// each page starts strictly after the last-seen member id, and a short page
// ends the loop.
func (s *GuildService) GetMembersWithRole(ctx context.Context, roleName string) ([]models.DiscordMember, error) {
	if s.cfg.GuildID == "" {
		return nil, ErrGuildNotConfigured
	}

	roles, err := s.GetGuildRoles(ctx)
	if err != nil {
		return nil, err
	}

	var target *models.GuildRole
	for i := range roles {
		if strings.EqualFold(roles[i].Name, roleName) {
			target = &roles[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
	}

	var all []models.DiscordMember
	after := "0"
	for {
		data, err := s.api.Get(ctx, fmt.Sprintf("/guilds/%s/members?limit=%d&after=%s",
			s.cfg.GuildID, memberPageLimit, after))
		if err != nil {
			return nil, err
		}
		var page []models.DiscordMember
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decoding member page: %w", err)
		}
		all = append(all, page...)
		if len(page) < memberPageLimit {
			break
		}
		after = page[len(page)-1].User.ID
	}

	result := []models.DiscordMember{}
	for _, m := range all {
		if !holdsRole(m.Roles, target.ID) {
			continue
		}
		m.DisplayName = DisplayName(m.Nick, m.User)
		m.AvatarURL = AvatarURL(m.User)
		m.HighestRole = HighestRole(roles, m.Roles)
		result = append(result, m)
	}
	return result, nil
}

// HighestRole returns the first entry of the position-sorted role list that
// the member holds, or nil if none match.
func HighestRole(sortedRoles []models.GuildRole, memberRoleIDs []string) *models.GuildRole {
	for i := range sortedRoles {
		if holdsRole(memberRoleIDs, sortedRoles[i].ID) {
			r := sortedRoles[i]
			return &r
		}
	}
	return nil
}

func sortRolesByPosition(roles []models.GuildRole) {
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Position > roles[j].Position
	})
}

func holdsRole(roleIDs []string, roleID string) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// DisplayName prefers nickname over global name over username.
func DisplayName(nick string, user models.DiscordUser) string {
	switch {
	case nick != "":
		return nick
	case user.GlobalName != "":
		return user.GlobalName
	case user.Username != "":
		return user.Username
	default:
		return "Unknown User"
	}
}

// AvatarURL builds the CDN URL for a user's avatar, falling back to the
// deterministic default avatar derived from (id >> 22) % 6.
func AvatarURL(user models.DiscordUser) string {
	if user.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", discordapi.CDNBaseURL, user.ID, user.Avatar)
	}
	id, err := strconv.ParseUint(user.ID, 10, 64)
	if err != nil {
		id = 0
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", discordapi.CDNBaseURL, (id>>22)%6)
}
