package otp

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client)
}

func TestRedisStoreRedeemOnce(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	ch := Challenge{RecipientKey: "user@example.com", Code: "123456", Channel: ChannelEmail}
	if err := store.Put(ctx, "email:user@example.com", ch); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := store.Redeem(ctx, "email:user@example.com", ch)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !ok {
		t.Fatalf("expected redeem to succeed")
	}

	ok, err = store.Redeem(ctx, "email:user@example.com", ch)
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if ok {
		t.Fatalf("expected redeemed challenge to be gone")
	}
}

func TestRedisStoreMismatchPreservesChallenge(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	ch := Challenge{RecipientKey: "user@example.com", Code: "123456", Channel: ChannelEmail}
	if err := store.Put(ctx, "email:user@example.com", ch); err != nil {
		t.Fatalf("put: %v", err)
	}

	wrong := ch
	wrong.Code = "654321"
	if ok, _ := store.Redeem(ctx, "email:user@example.com", wrong); ok {
		t.Fatalf("expected mismatched code to fail")
	}

	crossChannel := ch
	crossChannel.Channel = ChannelPhone
	if ok, _ := store.Redeem(ctx, "email:user@example.com", crossChannel); ok {
		t.Fatalf("expected mismatched channel to fail")
	}

	if ok, _ := store.Redeem(ctx, "email:user@example.com", ch); !ok {
		t.Fatalf("expected challenge to survive failed attempts")
	}
}

func TestRedisStorePutOverwrites(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	old := Challenge{RecipientKey: "+15550001111", Code: "111111", Channel: ChannelPhone}
	fresh := Challenge{RecipientKey: "+15550001111", Code: "222222", Channel: ChannelPhone}

	if err := store.Put(ctx, "phone:+15550001111", old); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := store.Put(ctx, "phone:+15550001111", fresh); err != nil {
		t.Fatalf("put fresh: %v", err)
	}

	if ok, _ := store.Redeem(ctx, "phone:+15550001111", old); ok {
		t.Fatalf("expected overwritten challenge to fail")
	}
	if ok, _ := store.Redeem(ctx, "phone:+15550001111", fresh); !ok {
		t.Fatalf("expected latest challenge to redeem")
	}
}

func TestRedisStoreWritesWithoutTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client)

	ch := Challenge{RecipientKey: "user@example.com", Code: "123456", Channel: ChannelEmail}
	if err := store.Put(context.Background(), "email:user@example.com", ch); err != nil {
		t.Fatalf("put: %v", err)
	}

	if mr.TTL(redisKeyPrefix+"email:user@example.com") != 0 {
		t.Fatalf("expected challenge key to carry no expiration")
	}
}
