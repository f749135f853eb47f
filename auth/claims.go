package auth

import "github.com/golang-jwt/jwt/v5"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims registered claims plus the token type and roles
type Claims struct {
	jwt.RegisteredClaims
	TokenType string   `json:"token_type"`
	Roles     []string `json:"roles,omitempty"`
}

// TokenPair access and refresh token issued together
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
