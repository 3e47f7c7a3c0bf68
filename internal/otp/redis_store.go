package otp

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:v1:"

// redeemScript deletes the stored challenge only when it matches the
// submitted one, making check-and-consume a single atomic step.
var redeemScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RedisStore keeps pending challenges in Redis so multiple replicas can share
// one registry. Entries are written without expiration: a challenge lives
// until it is redeemed or overwritten.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed challenge store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key string, ch Challenge) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, encodeChallenge(ch), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Redeem(ctx context.Context, key string, ch Challenge) (bool, error) {
	n, err := redeemScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, encodeChallenge(ch)).Int()
	if err != nil {
		return false, fmt.Errorf("redis redeem: %w", err)
	}
	return n == 1, nil
}

// encodeChallenge renders the comparable portion of a challenge. The channel
// rides along so a value can never be redeemed across channels even if key
// namespacing were bypassed.
func encodeChallenge(ch Challenge) string {
	return string(ch.Channel) + "|" + ch.Code
}
