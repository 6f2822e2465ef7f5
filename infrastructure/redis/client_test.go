package redis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/redis"
)

func TestNewClient_EmptyAddress(t *testing.T) {
	t.Parallel()

	client, err := redis.NewClient(context.Background(), redis.Config{})
	if !errors.Is(err, redis.ErrEmptyAddress) {
		t.Fatalf("err = %v, want ErrEmptyAddress", err)
	}
	if client != nil {
		t.Error("client should be nil for an empty address")
	}
}

func TestNewClient_UnreachableFailsPing(t *testing.T) {
	t.Parallel()

	// Port 1 on loopback is reserved and refuses connections.
	client, err := redis.NewClient(context.Background(), redis.Config{Address: "127.0.0.1:1"})
	if err == nil {
		_ = client.Close()
		t.Fatal("expected ping failure")
	}
}

func TestCheck_TracksServerAvailability(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), redis.Config{Address: mr.Addr(), PoolSize: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	check := redis.Check(client)
	if err := check(); err != nil {
		t.Fatalf("check against running server: %v", err)
	}

	mr.Close()
	if err := check(); err == nil {
		t.Error("check should fail once the server is gone")
	}
}
