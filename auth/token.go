package auth

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenManager issues and verifies HMAC-signed JWTs
type TokenManager struct {
	config      Config
	method      jwt.SigningMethod
	key         []byte
	revocations RevocationStore
	log         *logger.CtxZapLogger
	now         func() time.Time
}

// NewTokenManager cfg must be validated; revocations may be nil
func NewTokenManager(cfg Config, revocations RevocationStore, log *logger.CtxZapLogger) (*TokenManager, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrTokenInvalid.WithMsgf("unsupported algorithm: %s", cfg.Algorithm)
	}
	if log == nil {
		log = logger.GetLogger("auth")
	}
	return &TokenManager{
		config:      cfg,
		method:      method,
		key:         []byte(cfg.Secret),
		revocations: revocations,
		log:         log,
		now:         time.Now,
	}, nil
}

// IssueAccess access token for subject
func (m *TokenManager) IssueAccess(ctx context.Context, subject string, roles ...string) (string, error) {
	return m.issue(ctx, subject, TokenTypeAccess, m.config.AccessTTL, roles)
}

// IssueRefresh refresh token for subject
func (m *TokenManager) IssueRefresh(ctx context.Context, subject string) (string, error) {
	return m.issue(ctx, subject, TokenTypeRefresh, m.config.RefreshTTL, nil)
}

// IssuePair access and refresh tokens
func (m *TokenManager) IssuePair(ctx context.Context, subject string, roles ...string) (*TokenPair, error) {
	access, err := m.IssueAccess(ctx, subject, roles...)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefresh(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.config.AccessTTL.Seconds()),
	}, nil
}

func (m *TokenManager) issue(ctx context.Context, subject, tokenType string, ttl time.Duration, roles []string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
		Roles:     roles,
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.key)
	if err != nil {
		m.log.ErrorCtx(ctx, "sign token failed", zap.String("subject", subject), zap.Error(err))
		return "", ErrSign.Wrap(err)
	}

	m.log.DebugCtx(ctx, "token issued",
		zap.String("subject", subject),
		zap.String("token_type", tokenType),
		zap.Duration("ttl", ttl))
	return signed, nil
}

// Verify parses an access token and checks revocation
func (m *TokenManager) Verify(ctx context.Context, token string) (*Claims, error) {
	return m.verify(ctx, token, TokenTypeAccess)
}

func (m *TokenManager) verify(ctx context.Context, token, tokenType string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.config.Audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired.Wrap(err)
		}
		return nil, ErrTokenInvalid.Wrap(err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrTokenType.WithMsgf("expected %s token, got %s", tokenType, claims.TokenType)
	}

	if err := m.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *TokenManager) checkRevoked(ctx context.Context, claims *Claims) error {
	if m.revocations == nil {
		return nil
	}

	revoked, err := m.revocations.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}

	revokedAt, ok, err := m.revocations.SubjectRevokedAt(ctx, claims.Subject)
	if err != nil {
		return err
	}
	// second precision: a token issued in the revocation second is revoked too
	if ok && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAt) {
		return ErrTokenRevoked.WithMsgf("all tokens of %s have been revoked", claims.Subject)
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair; the old refresh token is revoked
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := m.verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := m.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return m.IssuePair(ctx, claims.Subject)
}

// Revoke revokes one token until its expiry
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{m.method.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return ErrTokenInvalid.Wrap(err)
	}
	return m.revoke(ctx, claims)
}

func (m *TokenManager) revoke(ctx context.Context, claims *Claims) error {
	if m.revocations == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.revocations.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return err
	}
	m.log.InfoCtx(ctx, "token revoked", zap.String("subject", claims.Subject), zap.String("jti", claims.ID))
	return nil
}

// RevokeSubject revokes every token already issued to subject
func (m *TokenManager) RevokeSubject(ctx context.Context, subject string) error {
	if m.revocations == nil {
		return nil
	}
	if err := m.revocations.RevokeSubject(ctx, subject, m.now(), m.config.RefreshTTL); err != nil {
		return err
	}
	m.log.InfoCtx(ctx, "subject tokens revoked", zap.String("subject", subject))
	return nil
}
