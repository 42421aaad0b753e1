package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store holds at most one pending checkout session per user between the cart
// and payment views. Load returns ErrNoSession when nothing is staged.
type Store interface {
	Save(ctx context.Context, userID int, session *Session) error
	Load(ctx context.Context, userID int) (*Session, error)
	Clear(ctx context.Context, userID int) error
}

// Abandoned sessions expire on their own; a day is generous for a flow that
// normally takes minutes.
const sessionTTL = 24 * time.Hour

func sessionKey(userID int) string {
	return fmt.Sprintf("checkoutData:%d", userID)
}

// RedisStore is the production Store. Last writer wins when the same user
// stages from two tabs, matching the browser-storage behavior it replaces.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func InitRedis(addr, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(userID), data, sessionTTL).Err()
}

func (s *RedisStore) Load(ctx context.Context, userID int) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID int) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

// MemoryStore is the in-process Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int]*Session)}
}

func (s *MemoryStore) Save(ctx context.Context, userID int, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[userID] = &copied
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, userID int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
