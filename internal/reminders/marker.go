package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// markerTTL keeps claims around long past the local day they cover; 48h
// comfortably spans every UTC offset.
const markerTTL = 48 * time.Hour

// RedisMarker implements Marker with a SETNX-style per-user-per-day key, so
// two trigger runs landing in the same send hour produce one email.
type RedisMarker struct {
	rdb *redis.Client
}

func NewRedisMarker(rdb *redis.Client) *RedisMarker {
	return &RedisMarker{rdb: rdb}
}

func (m *RedisMarker) Claim(ctx context.Context, userID uint, localDate string) (bool, error) {
	return m.rdb.SetNX(ctx, markerKey(userID, localDate), "1", markerTTL).Result()
}

func (m *RedisMarker) Release(ctx context.Context, userID uint, localDate string) {
	m.rdb.Del(ctx, markerKey(userID, localDate))
}

func markerKey(userID uint, localDate string) string {
	return fmt.Sprintf("reminders:sent:%d:%s", userID, localDate)
}
