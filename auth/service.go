package auth

import (
	"context"

	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/validator"
	"go.uber.org/zap"
)

// Service the auth component instance
type Service struct {
	Passwords *PasswordService
	Tokens    *TokenManager
	log       *logger.CtxZapLogger
}

// NewService validates cfg and wires both services
func NewService(cfg Config, revocations RevocationStore, log *logger.CtxZapLogger) (*Service, error) {
	cfg.ApplyDefaults()
	if err := validator.Validate("auth", cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetLogger("auth")
	}

	tokens, err := NewTokenManager(cfg, revocations, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		Passwords: NewPasswordService(cfg.Password, cfg.BcryptCost),
		Tokens:    tokens,
		log:       log,
	}, nil
}

// Login compares password with the stored hash and issues a token pair
func (s *Service) Login(ctx context.Context, subject, password, hash string, roles ...string) (*TokenPair, error) {
	if err := s.Passwords.Compare(hash, password); err != nil {
		s.log.WarnCtx(ctx, "login failed", zap.String("subject", subject))
		return nil, err
	}
	return s.Tokens.IssuePair(ctx, subject, roles...)
}

// Authenticate verifies an access token
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.Tokens.Verify(ctx, token)
}
