package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	logger "github.com/sanctyr/site/middleware/log"
)

var (
	ErrOAuthNotConfigured = errors.New("discord OAuth not configured")
	ErrInvalidState       = errors.New("invalid OAuth state")
	ErrCodeExchangeFailed = errors.New("failed to authenticate with Discord")
)

// stateTTL bounds how long a login redirect stays valid.
const stateTTL = 10 * time.Minute

// AuthService implements the Discord OAuth2 authorization-code flow: build
// the authorize URL with a signed state, exchange the callback code for an
// access token, and fetch the user's identity.
type AuthService struct {
	httpClient *http.Client
	cfg        *config.DiscordConfig
	stateKey   []byte
	logger     *logger.Logger

	authorizeURL string
	tokenURL     string
	userURL      string
}

// AuthOption customizes an AuthService; used by tests to point the token
// and user endpoints at a fake server.
type AuthOption func(*AuthService)

func WithOAuthEndpoints(tokenURL, userURL string) AuthOption {
	return func(s *AuthService) {
		s.tokenURL = tokenURL
		s.userURL = userURL
	}
}

func NewAuthService(cfg *config.DiscordConfig, stateSecret string, log *logger.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		cfg:          cfg,
		stateKey:     []byte(stateSecret),
		logger:       log,
		authorizeURL: "https://discord.com/oauth2/authorize",
		tokenURL:     "https://discord.com/api/oauth2/token",
		userURL:      "https://discord.com/api/users/@me",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) configured() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != "" && s.cfg.RedirectURI != ""
}

// LoginURL builds the Discord authorize URL carrying a signed state token.
func (s *AuthService) LoginURL() (string, error) {
	if !s.configured() {
		return "", ErrOAuthNotConfigured
	}
	state, err := s.signState()
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", s.cfg.ClientID)
	q.Set("redirect_uri", s.cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return s.authorizeURL + "?" + q.Encode(), nil
}

// signState issues a short-lived HS256 token; the callback verifies it to
// tie the redirect back to a login this server initiated.
func (s *AuthService) signState() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.stateKey)
	if err != nil {
		return "", fmt.Errorf("signing state: %w", err)
	}
	return signed, nil
}

// VerifyState checks the state token returned by Discord.
func (s *AuthService) VerifyState(state string) error {
	if state == "" {
		return ErrInvalidState
	}
	_, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidState
		}
		return s.stateKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidState, err)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Exchange trades the authorization code for an access token, fetches the
// Discord user profile with it, and returns the session identity.
func (s *AuthService) Exchange(ctx context.Context, code string) (*models.SessionUser, error) {
	if !s.configured() {
		return nil, ErrOAuthNotConfigured
	}
	if code == "" {
		return nil, errors.New("no code provided")
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Warn("oauth code exchange failed",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", errBody))
		return nil, ErrCodeExchangeFailed
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	return s.fetchUser(ctx, token.TokenType, token.AccessToken)
}

func (s *AuthService) fetchUser(ctx context.Context, tokenType, accessToken string) (*models.SessionUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building user request: %w", err)
	}
	req.Header.Set("Authorization", tokenType+" "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("fetching user info failed", zap.Int("status", resp.StatusCode))
		return nil, errors.New("failed to fetch user information")
	}

	var user models.DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}

	return &models.SessionUser{
		ID:            user.ID,
		Username:      user.Username,
		Avatar:        user.Avatar,
		Discriminator: user.Discriminator,
	}, nil
}
