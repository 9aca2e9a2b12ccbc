package models

// GuildRole is one role of the configured guild. Role slices handed out by
// the service layer are always sorted by Position descending, so the first
// role a member holds is their highest.
type GuildRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

// DiscordUser is the raw user object as Discord returns it.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
}

// DiscordMember wraps a guild member with the derived display fields the
// site renders. DisplayName prefers nickname over global name over username;
// AvatarURL falls back to a deterministic default avatar.
type DiscordMember struct {
	User     DiscordUser `json:"user"`
	Roles    []string    `json:"roles"`
	Nick     string      `json:"nick,omitempty"`
	JoinedAt string      `json:"joined_at"`

	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl"`
	HighestRole *GuildRole `json:"highestRole,omitempty"`
}

// MessageAttachment is a file attached to a channel message.
type MessageAttachment struct {
	URL         string `json:"url"`
	ProxyURL    string `json:"proxy_url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

// EmbedField is one name/value pair inside a rich embed.
type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EmbedImage is the image of a rich embed.
type EmbedImage struct {
	URL string `json:"url"`
}

// MessageEmbed is the subset of Discord's embed object the parsers consume.
type MessageEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       *EmbedImage  `json:"image"`
	Fields      []EmbedField `json:"fields"`
}

// ChannelMessage is a raw channel message from the Discord API.
type ChannelMessage struct {
	ID           string              `json:"id"`
	Content      string              `json:"content"`
	Author       DiscordUser         `json:"author"`
	Timestamp    string              `json:"timestamp"`
	Attachments  []MessageAttachment `json:"attachments"`
	Embeds       []MessageEmbed      `json:"embeds"`
	MentionRoles []string            `json:"mention_roles"`
}

// MessageAuthor is the view-ready author of a feed message.
type MessageAuthor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// ChannelMessageWithUser enriches a message with the author's resolved guild
// membership (nil if they since left the guild) and the full role list for
// client-side mention rendering.
type ChannelMessageWithUser struct {
	ID          string              `json:"id"`
	Content     string              `json:"content"`
	Author      MessageAuthor       `json:"author"`
	Timestamp   string              `json:"timestamp"`
	Attachments []MessageAttachment `json:"attachments"`
	Mentions    MessageMentions     `json:"mentions"`
	User        *DiscordMember      `json:"user"`
	AllRoles    []GuildRole         `json:"allRoles"`
}

// MessageMentions carries the role ids mentioned in a message.
type MessageMentions struct {
	Roles []string `json:"roles"`
}

// GuildDetails combines the guild object and the widget into one record.
// OnlineCount is best effort and defaults to 0 when the widget is disabled.
type GuildDetails struct {
	Name                     string `json:"name"`
	MemberCount              int    `json:"memberCount"`
	OnlineCount              int    `json:"onlineCount"`
	IconURL                  string `json:"iconUrl,omitempty"`
	PremiumSubscriptionCount int    `json:"premiumSubscriptionCount"`
	PremiumTier              int    `json:"premiumTier"`
}

// WidgetMember is a presence entry of the public widget payload.
type WidgetMember struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// DiscordWidgetData is the raw widget payload. The widget can be
// administratively disabled, in which case no data is available.
type DiscordWidgetData struct {
	Name          string         `json:"name"`
	InstantInvite string         `json:"instant_invite"`
	PresenceCount int            `json:"presence_count"`
	Members       []WidgetMember `json:"members"`
}
