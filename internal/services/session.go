package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTTL           = 7 * 24 * time.Hour
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_session:"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionValidator is the part of SessionService the auth middleware
// and websocket handlers need.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionManager is the full session lifecycle used by the auth
// handler.
type SessionManager interface {
	SessionValidator
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Destroy(ctx context.Context, token string) error
}

// SessionService holds login sessions in Redis. Sessions are created
// explicitly on login and deleted on logout; one active session per
// user, the TTL restarting on each login.
type SessionService struct {
	redis *redis.Client
}

// NewSessionService constructs a SessionService.
func NewSessionService(client *redis.Client) *SessionService {
	return &SessionService{redis: client}
}

// Create issues a fresh session token for the user, invalidating any
// previous one.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if err := s.invalidateExisting(ctx, userID); err != nil {
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(buf)

	if err := s.redis.Set(ctx, sessionKeyPrefix+token, userID.String(), sessionTTL).Err(); err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, userSessionKeyPrefix+userID.String(), token, sessionTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a bearer token to its user id.
func (s *SessionService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.redis.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

// Destroy tears down the session for the token.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	val, err := s.redis.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.redis.Del(ctx, sessionKeyPrefix+token, userSessionKeyPrefix+val).Err()
}

func (s *SessionService) invalidateExisting(ctx context.Context, userID uuid.UUID) error {
	token, err := s.redis.Get(ctx, userSessionKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.redis.Del(ctx, sessionKeyPrefix+token, userSessionKeyPrefix+userID.String()).Err()
}
