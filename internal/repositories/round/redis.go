package round

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	keyPrefix        = "spyround:"
	tableKeyPrefix   = "table:"
	roundIndexPrefix = "round:"
)

// Config holds configuration for the Redis round repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Namespace separates the keys of one process from another's
	Namespace string

	// TTL expires abandoned rounds; zero keeps them until deleted
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedis creates a new Redis-backed round repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if cfg.Namespace == "" {
		return nil, errors.New("namespace cannot be empty")
	}

	if cfg.TTL < 0 {
		return nil, errors.New("ttl cannot be negative")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client:    cfg.RedisClient,
		namespace: cfg.Namespace,
		ttl:       cfg.TTL,
	}, nil
}

func (r *redisRepository) tableKey(tableID string) string {
	return fmt.Sprintf("%s%s:%s%s", keyPrefix, r.namespace, tableKeyPrefix, tableID)
}

func (r *redisRepository) roundIndexKey(roundID string) string {
	return fmt.Sprintf("%s%s:%s%s", keyPrefix, r.namespace, roundIndexPrefix, roundID)
}

// SaveRound persists a round to Redis
func (r *redisRepository) SaveRound(ctx context.Context, input *SaveRoundInput) error {
	if input == nil || input.Round == nil {
		return errNilRound
	}
	if input.Round.TableID == "" {
		return errBlankTableID
	}

	// Marshal the round to JSON
	roundJSON, err := json.Marshal(input.Round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	pipe := r.client.TxPipeline()

	pipe.Set(ctx, r.tableKey(input.Round.TableID), roundJSON, r.ttl)

	// Round ID to table mapping, useful when inspecting a namespace by hand
	if input.Round.ID != "" {
		pipe.Set(ctx, r.roundIndexKey(input.Round.ID), input.Round.TableID, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}

	return nil
}

// GetRound retrieves the table's round from Redis
func (r *redisRepository) GetRound(ctx context.Context, input *GetRoundInput) (*models.Round, error) {
	if input == nil || input.TableID == "" {
		return nil, errBlankTableID
	}

	roundJSON, err := r.client.Get(ctx, r.tableKey(input.TableID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	var round models.Round
	if err := json.Unmarshal([]byte(roundJSON), &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %w", err)
	}

	return &round, nil
}

// DeleteRound removes the table's round and its index entry from Redis
func (r *redisRepository) DeleteRound(ctx context.Context, input *DeleteRoundInput) error {
	if input == nil || input.TableID == "" {
		return errBlankTableID
	}

	round, err := r.GetRound(ctx, &GetRoundInput{TableID: input.TableID})
	if err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			return nil
		}
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.tableKey(input.TableID))
	if round.ID != "" {
		pipe.Del(ctx, r.roundIndexKey(round.ID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}

	return nil
}
