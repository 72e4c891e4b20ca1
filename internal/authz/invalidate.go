package authz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// invalidateChannel carries cache-clear events between processes. The
// payload is a role ID, or clearAllToken for a whole-cache clear.
const (
	invalidateChannel = "authz.invalidate"
	clearAllToken     = "*"
)

// Invalidator fans cache clears out to every running instance over Redis
// pub/sub. Each process applies incoming events to its local cache; the
// publisher also clears locally so invalidation still works when Redis is
// unreachable, just without the fan-out.
type Invalidator struct {
	client *redis.Client
	cache  *Cache
	logger *slog.Logger
}

// NewInvalidator builds an invalidator for the given cache. A nil client
// degrades to local-only clears.
func NewInvalidator(client *redis.Client, cache *Cache, logger *slog.Logger) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{client: client, cache: cache, logger: logger}
}

// ClearAll clears the local cache and broadcasts a whole-cache clear.
func (i *Invalidator) ClearAll(ctx context.Context) {
	i.cache.Clear()
	i.publish(ctx, clearAllToken)
}

// ClearRole clears one role locally and broadcasts the per-role clear.
func (i *Invalidator) ClearRole(ctx context.Context, roleID string) {
	if roleID == "" {
		return
	}
	i.cache.ClearRole(roleID)
	i.publish(ctx, roleID)
}

func (i *Invalidator) publish(ctx context.Context, payload string) {
	if i.client == nil {
		return
	}
	if err := i.client.Publish(ctx, invalidateChannel, payload).Err(); err != nil {
		i.logger.Warn("publish cache invalidation", slog.Any("error", err))
	}
}

// Run subscribes to the invalidation channel and applies incoming clears to
// the local cache until ctx is cancelled.
func (i *Invalidator) Run(ctx context.Context) error {
	if i.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	sub := i.client.Subscribe(ctx, invalidateChannel)
	defer func() {
		if err := sub.Close(); err != nil {
			i.logger.Warn("close invalidation subscription", slog.Any("error", err))
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("authz: invalidation channel closed")
			}
			if msg.Payload == clearAllToken {
				i.cache.Clear()
				continue
			}
			i.cache.ClearRole(msg.Payload)
		}
	}
}
