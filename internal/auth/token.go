package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourorg/inventory-dashboard/internal/config"
)

// Identity is the (company, user) pair the notification stream is
// scoped to. It is extracted from the persisted access token.
type Identity struct {
	CompanyID string
	UserID    string
}

// Claims mirrors the access-token payload fields the agent cares about.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// LoadToken returns the bearer token from config, preferring an inline
// value over a token file. Token issuance and refresh belong to the
// platform's auth service, not the agent.
func LoadToken(cfg config.APIConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if cfg.TokenFile == "" {
		return "", fmt.Errorf("no api token configured")
	}
	raw, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// IdentityFromToken extracts the company/user identity from the token
// payload. The signature is not verified here; the server remains the
// authority and rejects bad tokens on every call.
func IdentityFromToken(token string) (Identity, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("token has no subject")
	}
	return Identity{CompanyID: claims.CompanyID, UserID: claims.Subject}, nil
}

// Expired reports whether the token carries an exp claim in the past.
func Expired(token string, now time.Time) bool {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
