package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/logger"
)

const defaultPrefix = constants.AppName

// releaseScript deletes a claim only while it is still held by the caller.
const releaseScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// Config configures the Redis marker store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key. Defaults to "flowmind".
	Prefix string
	// MarkerTTL bounds how long day markers are kept. Zero keeps them forever.
	MarkerTTL time.Duration
}

// MarkerStore keeps day markers and claims in Redis so several serve
// instances can share one dedup gate.
type MarkerStore struct {
	client    *goredis.Client
	prefix    string
	markerTTL time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*MarkerStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis marker store", "addr", cfg.Addr, "db", cfg.DB)
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, cfg Config) *MarkerStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &MarkerStore{
		client:    client,
		prefix:    prefix,
		markerTTL: cfg.MarkerTTL,
	}
}

func (s *MarkerStore) markerKey(personID, day string) string {
	return fmt.Sprintf("%s:marker:%s:%s", s.prefix, personID, day)
}

func (s *MarkerStore) claimKey(personID, day string) string {
	return fmt.Sprintf("%s:claim:%s:%s", s.prefix, personID, day)
}

func (s *MarkerStore) pendingKey(personID, day string) string {
	return fmt.Sprintf("%s:pending:%s:%s", s.prefix, personID, day)
}

func (s *MarkerStore) HasMarker(ctx context.Context, personID, day string) (bool, error) {
	n, err := s.client.Exists(ctx, s.markerKey(personID, day)).Result()
	if err != nil {
		return false, fmt.Errorf("check marker: %w", err)
	}
	return n > 0, nil
}

func (s *MarkerStore) SetMarkerIfAbsent(ctx context.Context, personID, day string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.markerKey(personID, day), time.Now().UTC().Format(time.RFC3339), s.markerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("set marker: %w", err)
	}
	return ok, nil
}

// ClearMarker forgets the day's marker and any pending write record.
func (s *MarkerStore) ClearMarker(ctx context.Context, personID, day string) error {
	if err := s.client.Del(ctx, s.markerKey(personID, day), s.pendingKey(personID, day)).Err(); err != nil {
		return fmt.Errorf("clear marker: %w", err)
	}
	return nil
}

// ClaimDay takes a lease on (person, day) that expires after ttl and returns
// the token that releases it. "" means another run holds the lease.
func (s *MarkerStore) ClaimDay(ctx context.Context, personID, day string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.claimKey(personID, day), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("claim day: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// ReleaseDay drops the lease if token still holds it.
func (s *MarkerStore) ReleaseDay(ctx context.Context, personID, day, token string) error {
	if err := s.client.Eval(ctx, releaseScript, []string{s.claimKey(personID, day)}, token).Err(); err != nil {
		return fmt.Errorf("release day: %w", err)
	}
	return nil
}

// MarkPending records that a calendar write for the day has started. It has
// no expiry: only a finished write or a reset removes it.
func (s *MarkerStore) MarkPending(ctx context.Context, personID, day string) error {
	if err := s.client.Set(ctx, s.pendingKey(personID, day), time.Now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("mark pending: %w", err)
	}
	return nil
}

func (s *MarkerStore) IsPending(ctx context.Context, personID, day string) (bool, error) {
	n, err := s.client.Exists(ctx, s.pendingKey(personID, day)).Result()
	if err != nil {
		return false, fmt.Errorf("check pending: %w", err)
	}
	return n > 0, nil
}

func (s *MarkerStore) ClearPending(ctx context.Context, personID, day string) error {
	if err := s.client.Del(ctx, s.pendingKey(personID, day)).Err(); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	return nil
}

func (s *MarkerStore) Close() error {
	return s.client.Close()
}
