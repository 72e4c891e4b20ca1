package authz

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestInvalidatorBroadcastsClears(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	local := NewCache()
	remote := NewCache()
	publisher := NewInvalidator(client, local, slog.Default())
	subscriber := NewInvalidator(client, remote, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = subscriber.Run(ctx)
	}()

	seed := func(c *Cache) {
		gen := c.Generation()
		c.StoreRole(gen, Role{ID: "r1"})
		c.StoreRole(gen, Role{ID: "r2"})
		c.StorePolicies(gen, "r1", []Policy{{ID: "p1"}})
	}
	seed(local)
	seed(remote)

	publisher.ClearRole(ctx, "r1")

	// Publisher cleared synchronously.
	_, ok := local.Role("r1")
	require.False(t, ok)

	// Subscriber clears on receipt.
	require.Eventually(t, func() bool {
		_, ok := remote.Role("r1")
		return !ok
	}, time.Second, 5*time.Millisecond)
	_, ok = remote.Role("r2")
	require.True(t, ok)

	publisher.ClearAll(ctx)
	require.Eventually(t, func() bool {
		_, ok := remote.Role("r2")
		return !ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestInvalidatorWithoutRedisClearsLocally(t *testing.T) {
	cache := NewCache()
	gen := cache.Generation()
	cache.StoreRole(gen, Role{ID: "r1"})

	inv := NewInvalidator(nil, cache, slog.Default())
	inv.ClearRole(context.Background(), "r1")

	_, ok := cache.Role("r1")
	require.False(t, ok)
}
