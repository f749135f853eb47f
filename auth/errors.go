package auth

import "github.com/KOMKZ/go-yogan-boot/errcode"

// ModuleCode auth module code
const ModuleCode = 30

const (
	CodePasswordPolicy = iota + 1
	CodeInvalidCredentials
	CodeTokenInvalid
	CodeTokenExpired
	CodeTokenRevoked
	CodeTokenType
	CodeSign
)

var (
	// ErrPasswordPolicy the password violates the policy; the message names the rule
	ErrPasswordPolicy = errcode.Register(errcode.New(ModuleCode, CodePasswordPolicy,
		"auth", "error.auth.password_policy", "password does not meet the policy"))

	// ErrInvalidCredentials password mismatch
	ErrInvalidCredentials = errcode.Register(errcode.New(ModuleCode, CodeInvalidCredentials,
		"auth", "error.auth.invalid_credentials", "invalid credentials"))

	// ErrTokenInvalid malformed token or bad signature
	ErrTokenInvalid = errcode.Register(errcode.New(ModuleCode, CodeTokenInvalid,
		"auth", "error.auth.token_invalid", "token is invalid"))

	ErrTokenExpired = errcode.Register(errcode.New(ModuleCode, CodeTokenExpired,
		"auth", "error.auth.token_expired", "token has expired"))

	// ErrTokenRevoked the token or every token of its subject was revoked
	ErrTokenRevoked = errcode.Register(errcode.New(ModuleCode, CodeTokenRevoked,
		"auth", "error.auth.token_revoked", "token has been revoked"))

	// ErrTokenType a refresh token used as access token or the reverse
	ErrTokenType = errcode.Register(errcode.New(ModuleCode, CodeTokenType,
		"auth", "error.auth.token_type", "unexpected token type"))

	// ErrSign signing failed
	ErrSign = errcode.Register(errcode.New(ModuleCode, CodeSign,
		"auth", "error.auth.sign", "sign token failed"))
)
