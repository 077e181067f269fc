package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mkravets/flightdesk/config"
	"github.com/mkravets/flightdesk/internal/domain"
)

// Store keeps sessions in redis keyed by token, so any instance behind a
// load balancer can serve a request carrying the token.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(cfg config.RedisConfig, ttl time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// Create opens a new session for username and returns it with a fresh token.
func (s *Store) Create(ctx context.Context, username string) (*Session, error) {
	sess := &Session{
		Token:       uuid.NewString(),
		Username:    username,
		Itineraries: nil,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get resolves a token to its session. A missing or expired token means the
// caller is not logged in.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}

	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotLoggedIn
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// SaveItineraries replaces the session's search snapshot and refreshes its TTL.
func (s *Store) SaveItineraries(ctx context.Context, sess *Session, itineraries []domain.Itinerary) error {
	sess.Itineraries = itineraries
	return s.save(ctx, sess)
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}
