// Package session resolves the current actor (user, tenant, membership)
// for a request. It owns all contact with the token layer; every other
// component receives context that is already resolved.
package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the session cookie set for browser clients.
const CookieName = "opsboard_session"

// Claims are the session token claims. TenantID names the active tenant
// and may be empty for users who have not selected one yet.
type Claims struct {
	Email    string `json:"email"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and parses signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager. The secret signs tokens with
// HMAC-SHA256 and must be non-empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed session token for the user.
func (m *Manager) Issue(userID, email, tenantID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    email,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates a session token and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}

// TokenFromRequest extracts the session token from the session cookie or
// a bearer Authorization header. Returns an empty string when absent.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}
