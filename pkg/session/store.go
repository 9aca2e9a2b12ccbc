// Package session stores the authenticated Discord identity in an encrypted
// cookie. There is no server-side session state; the sealed cookie is the
// only durable record, keyed by a server-held secret.
package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sanctyr/site/config"
	"github.com/sanctyr/site/internal/models"
)

// ErrInvalidCookie is returned by Open for a cookie that cannot be
// decrypted, e.g. after a secret rotation or tampering.
var ErrInvalidCookie = errors.New("session cookie could not be decrypted")

// Store seals and opens session cookies.
type Store struct {
	aead       cipher.AEAD
	cookieName string
	maxAge     int
	secure     bool
}

// NewStore derives the sealing key from the configured secret. The secret
// may be any non-empty string; it is hashed to the 32 bytes the cipher
// needs.
func NewStore(cfg *config.SessionConfig) (*Store, error) {
	if cfg.Secret == "" {
		return nil, config.ErrSessionSecretMissing
	}
	key := sha256.Sum256([]byte(cfg.Secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("initializing session cipher: %w", err)
	}
	return &Store{
		aead:       aead,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
	}, nil
}

// Seal encrypts a session user into a cookie value.
func (s *Store) Seal(user *models.SessionUser) (string, error) {
	plaintext, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a cookie value back into a session user.
func (s *Store) Open(value string) (*models.SessionUser, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(sealed) < s.aead.NonceSize() {
		return nil, ErrInvalidCookie
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidCookie
	}
	var user models.SessionUser
	if err := json.Unmarshal(plaintext, &user); err != nil {
		return nil, ErrInvalidCookie
	}
	return &user, nil
}

// Get returns the session user of the request, or nil if there is none.
// A missing or undecryptable cookie is an anonymous visitor, not an error.
func (s *Store) Get(c *gin.Context) *models.SessionUser {
	value, err := c.Cookie(s.cookieName)
	if err != nil {
		return nil
	}
	user, err := s.Open(value)
	if err != nil {
		return nil
	}
	return user
}

// Set writes the sealed session cookie. Called exactly once per login, from
// the OAuth callback.
func (s *Store) Set(c *gin.Context, user *models.SessionUser) error {
	value, err := s.Seal(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, value, s.maxAge, "/", "", s.secure, true)
	return nil
}

// Clear deletes the session cookie.
func (s *Store) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}
