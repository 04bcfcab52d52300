package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache は会場×イベント単位の空席数キャッシュを管理する
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しい AvailabilityCache インスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetAvailableCount は空席数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailableCount(ctx context.Context, venueID, eventID string) (int, error) {
	key := c.availableCountKey(venueID, eventID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は空席数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailableCount(ctx context.Context, venueID, eventID string, count int, ttl time.Duration) error {
	key := c.availableCountKey(venueID, eventID)
	err := c.client.Set(ctx, key, count, ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は会場×イベントのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, venueID, eventID string) error {
	key := c.availableCountKey(venueID, eventID)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) availableCountKey(venueID, eventID string) string {
	return fmt.Sprintf("seats:available:%s:%s", venueID, eventID)
}
