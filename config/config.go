package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once at
// process start and passed by reference into every component; nothing reads
// environment variables after LoadConfig returns.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Session   SessionConfig   `mapstructure:"session"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`
	AppURL string `mapstructure:"app_url"` // public base URL, used for OAuth redirects
}

type DiscordConfig struct {
	BotToken     string `mapstructure:"bot_token"`
	GuildID      string `mapstructure:"guild_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`

	AnnouncementsChannelID       string `mapstructure:"announcements_channel_id"`
	LiveFeedChannelID            string `mapstructure:"live_feed_channel_id"`
	PartnersChannelID            string `mapstructure:"partners_channel_id"`
	EventsChannelID              string `mapstructure:"events_channel_id"`
	PartnershipRequestsChannelID string `mapstructure:"partnership_requests_channel_id"`

	BoosterRoleName   string `mapstructure:"booster_role_name"`
	SupporterRoleName string `mapstructure:"supporter_role_name"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
	MaxAge     int    `mapstructure:"max_age"` // seconds
	Secure     bool   `mapstructure:"secure"`
}

type EconomyConfig struct {
	APIURL    string `mapstructure:"api_url"`
	APISecret string `mapstructure:"api_secret"`
}

// RedisConfig is the optional rate-limit store. An empty Addr disables
// rate limiting entirely; everything else keeps working.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Requests int `mapstructure:"requests"`
	WindowS  int `mapstructure:"window_s"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// ErrSessionSecretMissing is returned when no session secret is configured.
// The server refuses to start without one since the session cookie is the
// only durable state.
var ErrSessionSecretMissing = errors.New("session secret is not configured")

// LoadConfig loads configuration from an optional .env file, an optional
// config file, and the environment. Environment variables override file
// settings; keys map as server.app_url -> SERVER_APP_URL.
func LoadConfig(path string) (*Config, error) {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	v := viper.New()

	// AutomaticEnv only surfaces keys viper already knows about during
	// Unmarshal, so every key gets a default.
	v.SetDefault("server.port", 9002)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.app_url", "http://localhost:9002")
	v.SetDefault("session.cookie_name", "dls_session")
	v.SetDefault("session.max_age", 7*24*3600)
	v.SetDefault("discord.booster_role_name", "D'Kingdom Booster")
	v.SetDefault("discord.supporter_role_name", "D'Kingdom Supporter")
	v.SetDefault("ratelimit.requests", 5)
	v.SetDefault("ratelimit.window_s", 60)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	for _, key := range []string{
		"discord.bot_token",
		"discord.guild_id",
		"discord.client_id",
		"discord.client_secret",
		"discord.redirect_uri",
		"discord.announcements_channel_id",
		"discord.live_feed_channel_id",
		"discord.partners_channel_id",
		"discord.events_channel_id",
		"discord.partnership_requests_channel_id",
		"session.secret",
		"economy.api_url",
		"economy.api_secret",
		"redis.addr",
		"redis.password",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("session.secure", false)
	v.SetDefault("redis.db", 0)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// the config file is optional; only a present-but-broken file is fatal
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, ErrSessionSecretMissing
	}

	return &cfg, nil
}
