package probes

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// SeatLockKey is the key pattern under which the order service records
// short-lived seat exclusivity markers.
func SeatLockKey(seatID string) string {
	return "seat_lock:" + seatID
}

// RedisProbe checks key existence in the lock store. A client is created and
// closed per call.
type RedisProbe struct {
	addr string
}

func NewRedisProbe(addr string) *RedisProbe {
	return &RedisProbe{addr: addr}
}

func (p *RedisProbe) KeyExists(ctx context.Context, key string) (bool, error) {
	client, err := p.newClient()
	if err != nil {
		return false, err
	}
	defer client.Close()

	count, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "EXISTS %s failed", key)
	}
	return count > 0, nil
}

func (p *RedisProbe) newClient() (*redis.Client, error) {
	if strings.HasPrefix(p.addr, "redis://") || strings.HasPrefix(p.addr, "rediss://") {
		opts, err := redis.ParseURL(p.addr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid redis url %s", p.addr)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: p.addr}), nil
}
