// Package token issues and parses the bearer tokens handed out on login.
//
// A token is "<prefix> <jwt>". The JWT is HS256-signed and carries the user id
// and role as AES-GCM sealed strings, so neither is readable without the secret.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing token")
)

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// Identity is what a valid token proves about its bearer.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type Manager struct {
	signKey []byte
	issuer  string
	prefix  string
	ttl     time.Duration
	cipher  *fieldCipher
	now     func() time.Time
}

func NewManager(secret, issuer, prefix string, ttl time.Duration) (*Manager, error) {
	if secret == "" || issuer == "" || ttl <= 0 {
		return nil, errors.New("invalid params for token manager")
	}

	c, err := newFieldCipher(secret)
	if err != nil {
		return nil, err
	}

	return &Manager{
		signKey: []byte(secret),
		issuer:  issuer,
		prefix:  prefix,
		ttl:     ttl,
		cipher:  c,
		now:     time.Now,
	}, nil
}

// Issue returns the prefixed, signed token for userID and role.
func (m *Manager) Issue(userID uuid.UUID, role string) (string, error) {
	encID, err := m.cipher.encrypt(userID.String())
	if err != nil {
		return "", fmt.Errorf("encrypt user id: %w", err)
	}
	encRole, err := m.cipher.encrypt(role)
	if err != nil {
		return "", fmt.Errorf("encrypt role: %w", err)
	}

	now := m.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: encID,
		Role:   encRole,
	})

	signed, err := t.SignedString(m.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if m.prefix == "" {
		return signed, nil
	}
	return m.prefix + " " + signed, nil
}

// Parse validates an Authorization header value or a bare token string.
// "Bearer <jwt>", "<prefix> <jwt>", "Bearer <prefix> <jwt>" and "<jwt>" are accepted.
func (m *Manager) Parse(raw string) (Identity, error) {
	signed := m.strip(raw)
	if signed == "" {
		return Identity{}, ErrMissingToken
	}

	var c claims
	_, err := jwt.ParseWithClaims(signed, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	rawID, err := m.cipher.decrypt(c.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: user id: %v", ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: user id: %v", ErrInvalidToken, err)
	}

	role, err := m.cipher.decrypt(c.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: role: %v", ErrInvalidToken, err)
	}

	return Identity{UserID: userID, Role: role}, nil
}

func (m *Manager) strip(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "Bearer "))
	if m.prefix != "" {
		s = strings.TrimSpace(strings.TrimPrefix(s, m.prefix+" "))
	}
	return s
}
