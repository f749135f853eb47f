package auth

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-boot/cache"
)

const (
	revokedTokenPrefix   = "auth:revoked:"
	revokedSubjectPrefix = "auth:revoked_subject:"
)

// RevocationStore revoked token ids and per-subject revocation times
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeSubject invalidates every token of subject issued up to at
	RevokeSubject(ctx context.Context, subject string, at time.Time, ttl time.Duration) error
	SubjectRevokedAt(ctx context.Context, subject string) (time.Time, bool, error)
}

// CacheRevocations RevocationStore on the cache component
type CacheRevocations struct {
	cache *cache.Cache
}

// NewCacheRevocations stores revocation markers in c
func NewCacheRevocations(c *cache.Cache) *CacheRevocations {
	return &CacheRevocations{cache: c}
}

// RevokeToken implements RevocationStore
func (r *CacheRevocations) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return r.cache.Set(ctx, revokedTokenPrefix+jti, true, ttl)
}

// IsTokenRevoked implements RevocationStore
func (r *CacheRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.cache.Get(ctx, revokedTokenPrefix+jti, &revoked)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	return revoked, err
}

// RevokeSubject implements RevocationStore
func (r *CacheRevocations) RevokeSubject(ctx context.Context, subject string, at time.Time, ttl time.Duration) error {
	return r.cache.Set(ctx, revokedSubjectPrefix+subject, at.Unix(), ttl)
}

// SubjectRevokedAt implements RevocationStore
func (r *CacheRevocations) SubjectRevokedAt(ctx context.Context, subject string) (time.Time, bool, error) {
	var unix int64
	err := r.cache.Get(ctx, revokedSubjectPrefix+subject, &unix)
	if errors.Is(err, cache.ErrCacheMiss) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0), true, nil
}
