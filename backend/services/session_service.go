package services

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
)

const (
	sessionCacheSize = 2048
	sessionCacheTTL  = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionService resolves bearer tokens to users. Token issuance belongs to
// the auth service; this side only validates. Resolved users sit in an LRU
// for a short TTL so the hot accept path does not hit the users table on
// every request.
type SessionService struct {
	users repositories.UserRepository
	cache *lru.Cache
}

type sessionEntry struct {
	user      *models.User
	expiresAt time.Time
}

func NewSessionService(users repositories.UserRepository) (*SessionService, error) {
	cache, err := lru.New(sessionCacheSize)
	if err != nil {
		return nil, err
	}
	return &SessionService{users: users, cache: cache}, nil
}

// ResolveToken returns the user owning the token, from cache when fresh.
func (s *SessionService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	if v, ok := s.cache.Get(token); ok {
		entry := v.(sessionEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry.user, nil
		}
		s.cache.Remove(token)
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	s.cache.Add(token, sessionEntry{user: user, expiresAt: time.Now().Add(sessionCacheTTL)})
	return user, nil
}

// Invalidate drops a token from the cache, e.g. after a role change.
func (s *SessionService) Invalidate(token string) {
	s.cache.Remove(token)
}
