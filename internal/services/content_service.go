package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	"github.com/sanctyr/site/pkg/discordapi"
	logger "github.com/sanctyr/site/middleware/log"
)

// Partner and event channels hold admin-authored rich embeds, not a strict
// schema. Parsing is heuristic field-name matching; a malformed message is
// dropped with a discard reason, never an error for the whole batch.

var (
	markdownLinkRe = regexp.MustCompile(`\[.*?\]\((https?://[^\s)]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s)]+`)
)

const (
	partnersPageSize = 25
	eventsPageSize   = 10
)

// ContentService parses partner and event records out of channel embeds.
type ContentService struct {
	api    *discordapi.Client
	cfg    *config.DiscordConfig
	logger *logger.Logger
}

func NewContentService(api *discordapi.Client, cfg *config.DiscordConfig, log *logger.Logger) *ContentService {
	return &ContentService{api: api, cfg: cfg, logger: log}
}

func (s *ContentService) fetchMessages(ctx context.Context, channelID string, limit int) ([]models.ChannelMessage, error) {
	data, err := s.api.Get(ctx, fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit))
	if err != nil {
		return nil, err
	}
	var messages []models.ChannelMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decoding channel messages: %w", err)
	}
	return messages, nil
}

// GetPartners returns the partners parsed from the partners channel. A
// channel with only unparseable messages yields an empty list, not an
// error.
func (s *ContentService) GetPartners(ctx context.Context) ([]models.Partner, error) {
	if s.cfg.PartnersChannelID == "" {
		return nil, fmt.Errorf("partners %w", ErrChannelNotProvided)
	}

	messages, err := s.fetchMessages(ctx, s.cfg.PartnersChannelID, partnersPageSize)
	if err != nil {
		return nil, err
	}

	partners := []models.Partner{}
	for _, msg := range messages {
		partner, discard := ParsePartner(msg)
		if partner == nil {
			s.logger.Debug("skipping partner message",
				zap.String("message_id", msg.ID), zap.String("reason", discard))
			continue
		}
		partners = append(partners, *partner)
	}
	return partners, nil
}

// ParsePartner extracts a Partner from a message's first embed. Returns
// (nil, reason) when the message doesn't qualify.
func ParsePartner(msg models.ChannelMessage) (*models.Partner, string) {
	if len(msg.Embeds) == 0 {
		return nil, "no embeds"
	}
	embed := msg.Embeds[0]
	if embed.Title == "" || embed.Image == nil || embed.Image.URL == "" {
		return nil, "missing title or image"
	}

	partner := &models.Partner{
		Name:        embed.Title,
		JoinLink:    "#",
		Tags:        []string{},
		Description: embed.Description,
		ImageURL:    embed.Image.URL,
	}

	for _, field := range embed.Fields {
		if strings.Contains(field.Value, "https://discord.gg/") {
			if match := markdownLinkRe.FindStringSubmatch(field.Value); match != nil {
				partner.JoinLink = match[1]
			} else {
				partner.JoinLink = strings.TrimSpace(field.Value)
			}
			break
		}
	}

	for _, field := range embed.Fields {
		name := strings.ToLower(field.Name)
		if strings.Contains(name, "tags") || strings.Contains(name, "categories") {
			partner.Tags = splitTags(field.Value)
			break
		}
	}

	return partner, ""
}

// GetEvents returns the events parsed from the events channel.
func (s *ContentService) GetEvents(ctx context.Context) ([]models.Event, error) {
	if s.cfg.EventsChannelID == "" {
		return nil, fmt.Errorf("events %w", ErrChannelNotProvided)
	}

	messages, err := s.fetchMessages(ctx, s.cfg.EventsChannelID, eventsPageSize)
	if err != nil {
		return nil, err
	}

	events := []models.Event{}
	for _, msg := range messages {
		event, discard := ParseEvent(msg)
		if event == nil {
			s.logger.Debug("skipping event message",
				zap.String("message_id", msg.ID), zap.String("reason", discard))
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}

// ParseEvent extracts an Event from a message's first embed. Events require
// a title, description and image; the read-more link is optional.
func ParseEvent(msg models.ChannelMessage) (*models.Event, string) {
	if len(msg.Embeds) == 0 {
		return nil, "no embeds"
	}
	embed := msg.Embeds[0]
	if embed.Title == "" || embed.Description == "" || embed.Image == nil || embed.Image.URL == "" {
		return nil, "missing title, description or image"
	}

	event := &models.Event{
		Title:       embed.Title,
		Category:    "General",
		Description: embed.Description,
		ImageURL:    embed.Image.URL,
	}

	for _, field := range embed.Fields {
		if strings.Contains(strings.ToLower(field.Name), "tags") && field.Value != "" {
			event.Category = field.Value
			break
		}
	}

	for _, field := range embed.Fields {
		name := strings.ToLower(field.Name)
		if !strings.Contains(name, "read more") && !strings.Contains(name, "link") && !strings.Contains(name, "learn more") {
			continue
		}
		if match := markdownLinkRe.FindStringSubmatch(field.Value); match != nil {
			event.ReadMoreLink = match[1]
		} else if url := bareURLRe.FindString(field.Value); url != "" {
			event.ReadMoreLink = url
		}
		break
	}

	return event, ""
}

func splitTags(value string) []string {
	parts := strings.Split(value, ",")
	tags := []string{}
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
