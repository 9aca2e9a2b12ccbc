package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
	logger "github.com/sanctyr/site/middleware/log"
)

var (
	ErrEconomyNotConfigured = errors.New("economy API not configured")
	ErrProfileNotFound      = errors.New("economy profile not found for this user")
)

// EconomyService proxies the external economy microservice. The remote
// service is the sole authority on command validity and effects; this
// client only does request plumbing and surfaces the remote response
// verbatim. No retries, no local caching of economy state.
type EconomyService struct {
	httpClient *http.Client
	cfg        *config.EconomyConfig
	logger     *logger.Logger
}

func NewEconomyService(cfg *config.EconomyConfig, log *logger.Logger) *EconomyService {
	return &EconomyService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
		logger:     log,
	}
}

func (s *EconomyService) configured() bool {
	return s.cfg.APIURL != "" && s.cfg.APISecret != ""
}

// GetProfile fetches a user's economy profile. A remote 404 maps to
// ErrProfileNotFound, distinct from generic upstream failures.
func (s *EconomyService) GetProfile(ctx context.Context, userID string) (*models.EconomyProfile, error) {
	if !s.configured() {
		return nil, ErrEconomyNotConfigured
	}
	if userID == "" {
		return nil, errors.New("user ID not provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/profile/%s", s.cfg.APIURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("X-API-Secret", s.cfg.APISecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching economy profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Warn("economy api error",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", errBody))
		return nil, fmt.Errorf("failed to fetch economy profile: %s", resp.Status)
	}

	var profile models.EconomyProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding economy profile: %w", err)
	}
	return &profile, nil
}

type commandRequest struct {
	UserID  string   `json:"userId"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type commandResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// RunCommand executes an economy command ("work", "deposit", ...) for a
// user. The remote response message or error is returned verbatim; no
// business-rule validation happens here.
func (s *EconomyService) RunCommand(ctx context.Context, userID, command string, args []string) (string, error) {
	if !s.configured() {
		return "", ErrEconomyNotConfigured
	}
	if userID == "" || command == "" {
		return "", errors.New("user ID or command not provided")
	}
	if args == nil {
		args = []string{}
	}

	payload, err := json.Marshal(commandRequest{UserID: userID, Command: command, Args: args})
	if err != nil {
		return "", fmt.Errorf("encoding command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.APIURL+"/api/command", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building command request: %w", err)
	}
	req.Header.Set("X-API-Secret", s.cfg.APISecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("running economy command: %w", err)
	}
	defer resp.Body.Close()

	var result commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("decoding command response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("economy command failed",
			zap.Int("status", resp.StatusCode),
			zap.String("command", command),
			zap.String("remote_error", result.Error))
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("command failed with status: %s", resp.Status)
	}

	return result.Message, nil
}
