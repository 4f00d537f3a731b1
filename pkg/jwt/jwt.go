package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// TokenKind separates access tokens from refresh tokens so one can never stand in for the other
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims represents the JWT claims structure
type Claims struct {
	AccountID    uuid.UUID `json:"account_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	TokenVersion string    `json:"token_version"`
	Kind         TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Config holds signing secrets and lifetimes
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Manager issues and validates tokens with the secrets it was built with
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "go-storefront"
	}
	return &Manager{cfg: cfg, now: time.Now}
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// Subject is the identity data embedded into a token
type Subject struct {
	AccountID    uuid.UUID
	Email        string
	Name         string
	Role         string
	TokenVersion string
}

// GenerateAccess creates a short-lived access token
func (m *Manager) GenerateAccess(s Subject) (string, error) {
	return m.generate(s, KindAccess, m.cfg.AccessTTL, m.cfg.AccessSecret)
}

// GenerateRefresh creates a long-lived refresh token
func (m *Manager) GenerateRefresh(s Subject) (string, error) {
	return m.generate(s, KindRefresh, m.cfg.RefreshTTL, m.cfg.RefreshSecret)
}

func (m *Manager) generate(s Subject, kind TokenKind, ttl time.Duration, secret string) (string, error) {
	now := m.now()
	claims := &Claims{
		AccountID:    s.AccountID,
		Email:        s.Email,
		Name:         s.Name,
		Role:         s.Role,
		TokenVersion: s.TokenVersion,
		Kind:         kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.AccountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccess parses and validates an access token
func (m *Manager) ValidateAccess(tokenString string) (*Claims, error) {
	return m.validate(tokenString, KindAccess, m.cfg.AccessSecret)
}

// ValidateRefresh parses and validates a refresh token
func (m *Manager) ValidateRefresh(tokenString string) (*Claims, error) {
	return m.validate(tokenString, KindRefresh, m.cfg.RefreshSecret)
}

func (m *Manager) validate(tokenString string, kind TokenKind, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.cfg.Issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Kind == kind {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
