package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTTL is how long an admin token stays valid
	DefaultTTL = 12 * time.Hour

	adminSubject = "admin"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
)

// Claims identifies an authenticated admin
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Manager checks the admin password and issues HS256 tokens
type Manager struct {
	secret       []byte
	password     string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

// Config holds the admin credentials and token settings.
// PasswordHash is a bcrypt hash and wins over Password when set.
type Config struct {
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// NewManager creates an admin auth manager
func NewManager(cfg Config) *Manager {
	secret := cfg.Secret
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		secret:   []byte(secret),
		password: cfg.Password,
		ttl:      ttl,
		now:      time.Now,
	}
	if cfg.PasswordHash != "" {
		m.passwordHash = []byte(cfg.PasswordHash)
	}
	return m
}

// CheckPassword verifies the shared admin password
func (m *Manager) CheckPassword(password string) error {
	if len(m.passwordHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	if m.password == "" || subtle.ConstantTimeCompare([]byte(m.password), []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// Login checks the password and issues a token with its expiry
func (m *Manager) Login(password string) (string, time.Time, error) {
	if err := m.CheckPassword(password); err != nil {
		return "", time.Time{}, err
	}
	return m.Issue()
}

// Issue signs a new admin token
func (m *Manager) Issue() (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates a token and returns its claims
func (m *Manager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || !claims.Admin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
