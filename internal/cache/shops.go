package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShopSetKey 使用者可存取商店集合的快取 key
func ShopSetKey(userID int) string {
	return fmt.Sprintf("ledger:shops:%d", userID)
}

// GetShopSet 讀取快取；miss 時回傳 ok=false
func GetShopSet(ctx context.Context, c Cache, userID int) ([]int, bool, error) {
	raw, err := c.Get(ctx, ShopSetKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func SetShopSet(ctx context.Context, c Cache, userID int, ids []int, ttl time.Duration) error {
	if ids == nil {
		ids = []int{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.Set(ctx, ShopSetKey(userID), b, ttl).Err()
}

func InvalidateShopSets(ctx context.Context, c Cache, userIDs ...int) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, ShopSetKey(id))
	}
	return c.Del(ctx, keys...).Err()
}
