package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService bcrypt hashing and policy checks
type PasswordService struct {
	policy     PasswordPolicy
	bcryptCost int
}

// NewPasswordService hashes with bcrypt at the given cost
func NewPasswordService(policy PasswordPolicy, bcryptCost int) *PasswordService {
	return &PasswordService{
		policy:     policy,
		bcryptCost: bcryptCost,
	}
}

// Hash bcrypt hash of password
func (s *PasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns ErrInvalidCredentials on mismatch
func (s *PasswordService) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials.Wrap(err)
	}
	return nil
}

// Validate checks the password against the policy
func (s *PasswordService) Validate(password string) error {
	if len(password) < s.policy.MinLength {
		return ErrPasswordPolicy.WithMsgf("password must be at least %d characters", s.policy.MinLength)
	}
	if len(password) > s.policy.MaxLength {
		return ErrPasswordPolicy.WithMsgf("password must be at most %d characters", s.policy.MaxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	switch {
	case s.policy.RequireUppercase && !hasUpper:
		return ErrPasswordPolicy.WithMsgf("password must contain an uppercase letter")
	case s.policy.RequireLowercase && !hasLower:
		return ErrPasswordPolicy.WithMsgf("password must contain a lowercase letter")
	case s.policy.RequireDigit && !hasDigit:
		return ErrPasswordPolicy.WithMsgf("password must contain a digit")
	case s.policy.RequireSpecialChar && !hasSpecial:
		return ErrPasswordPolicy.WithMsgf("password must contain a special character")
	}

	lower := strings.ToLower(password)
	for _, weak := range s.policy.Blacklist {
		if weak != "" && strings.Contains(lower, strings.ToLower(weak)) {
			return ErrPasswordPolicy.WithMsgf("password contains a blacklisted word")
		}
	}
	return nil
}
