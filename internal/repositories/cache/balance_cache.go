package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/redis/go-redis/v9"
)

const walletKeyPrefix = "wallet:user:"

// RedisConfig holds connection settings for NewRedisClient.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a client and pings it once.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisBalanceCache stores wallet snapshots as JSON under wallet:user:<userID>.
// Entries expire after ttl so a missed invalidation heals on its own.
type RedisBalanceCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisBalanceCache creates a balance cache on client.
func NewRedisBalanceCache(client redis.UniversalClient, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

var _ portssvc.BalanceCache = (*RedisBalanceCache)(nil)

func walletKey(userID string) string {
	return walletKeyPrefix + userID
}

// GetWallet returns the cached wallet. A missing key is a miss, not an error.
func (c *RedisBalanceCache) GetWallet(ctx context.Context, userID string) (*domain.Wallet, bool, error) {
	raw, err := c.client.Get(ctx, walletKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", userID, err)
	}

	var wallet domain.Wallet
	if err := json.Unmarshal(raw, &wallet); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", userID, err)
	}
	return &wallet, true, nil
}

// SetWallet caches wallet under its owner's key.
func (c *RedisBalanceCache) SetWallet(ctx context.Context, wallet domain.Wallet) error {
	raw, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", wallet.UserID, err)
	}
	if err := c.client.Set(ctx, walletKey(wallet.UserID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", wallet.UserID, err)
	}
	return nil
}

// Invalidate drops the cached wallets of userIDs.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = walletKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
