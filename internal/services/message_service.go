package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

var ErrChannelNotProvided = errors.New("channel ID not provided")

// defaultMessageLimit bounds feed requests that don't name a limit.
const defaultMessageLimit = 5

// MessageService fetches and sends channel messages, enriching fetched
// messages with the author's resolved guild membership.
type MessageService struct {
	api    *discordapi.Client
	guilds *GuildService
	logger *logger.Logger
}

func NewMessageService(api *discordapi.Client, guilds *GuildService, log *logger.Logger) *MessageService {
	return &MessageService{api: api, guilds: guilds, logger: log}
}

// GetChannelMessagesWithUsers returns the most recent messages of a channel
// with each author's current guild membership resolved. The role list is
// fetched once; member lookups run in parallel. A failed member lookup
// never fails the batch: that message renders from the raw author fields.
func (s *MessageService) GetChannelMessagesWithUsers(ctx context.Context, channelID string, limit int) ([]models.ChannelMessageWithUser, error) {
	if channelID == "" {
		return nil, ErrChannelNotProvided
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	data, err := s.api.Get(ctx, fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit))
	if err != nil {
		return nil, err
	}
	var messages []models.ChannelMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decoding channel messages: %w", err)
	}

	roles, err := s.guilds.GetGuildRoles(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.ChannelMessageWithUser, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	for i, msg := range messages {
		g.Go(func() error {
			member, err := s.guilds.GetGuildMember(gctx, msg.Author.ID)
			if err != nil {
				s.logger.Warn("could not resolve message author",
					zap.String("user_id", msg.Author.ID), zap.Error(err))
				member = nil
			}
			enriched[i] = buildMessageView(msg, member, roles)
			return nil
		})
	}
	// Lookups only log failures, so Wait cannot return an error here.
	_ = g.Wait()

	return enriched, nil
}

func buildMessageView(msg models.ChannelMessage, member *models.DiscordMember, roles []models.GuildRole) models.ChannelMessageWithUser {
	if member != nil {
		member.HighestRole = HighestRole(roles, member.Roles)
	}

	var nick string
	if member != nil {
		nick = member.Nick
	}
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []models.MessageAttachment{}
	}
	mentionRoles := msg.MentionRoles
	if mentionRoles == nil {
		mentionRoles = []string{}
	}

	return models.ChannelMessageWithUser{
		ID:      msg.ID,
		Content: msg.Content,
		Author: models.MessageAuthor{
			ID:          msg.Author.ID,
			Username:    msg.Author.Username,
			DisplayName: DisplayName(nick, msg.Author),
			AvatarURL:   AvatarURL(msg.Author),
		},
		Timestamp:   msg.Timestamp,
		Attachments: attachments,
		Mentions:    models.MessageMentions{Roles: mentionRoles},
		User:        member,
		AllRoles:    roles,
	}
}

// SendChannelMessage posts a plain-text message to a channel.
func (s *MessageService) SendChannelMessage(ctx context.Context, channelID, content string) error {
	if channelID == "" {
		return ErrChannelNotProvided
	}
	_, err := s.api.Post(ctx, fmt.Sprintf("/channels/%s/messages", channelID),
		map[string]string{"content": content})
	return err
}

// SendDM opens a DM channel with the user and sends a message to it.
func (s *MessageService) SendDM(ctx context.Context, userID, content string) error {
	if userID == "" {
		return errors.New("user ID not provided")
	}

	data, err := s.api.Post(ctx, "/users/@me/channels",
		map[string]string{"recipient_id": userID})
	if err != nil {
		return fmt.Errorf("creating DM channel: %w", err)
	}
	var channel struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &channel); err != nil || channel.ID == "" {
		return errors.New("could not create a direct message channel with the user")
	}

	return s.SendChannelMessage(ctx, channel.ID, content)
}
