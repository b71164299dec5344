package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "permitdesk:invalidate"

// Publisher is the subset of the go-redis API the invalidator needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Invalidator implements secondary.CacheInvalidator by publishing each key on a
// pub/sub channel. Subscribers drop the matching cache entries.
type Invalidator struct {
	pub     Publisher
	channel string
}

// NewInvalidator creates a publisher-backed invalidator.
func NewInvalidator(pub Publisher, channel string) *Invalidator {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Invalidator{pub: pub, channel: channel}
}

// Invalidate publishes every key in order. A *Client publishes in one pipeline
// round trip; other publishers attempt every key even if one fails.
func (i *Invalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if c, ok := i.pub.(*Client); ok {
		cmds, err := c.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range keys {
				pipe.Publish(ctx, i.channel, key)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("publish invalidations: %w", err)
		}
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return fmt.Errorf("publish invalidations: %w", err)
			}
		}
		return nil
	}

	var errs []error
	for _, key := range keys {
		if err := i.pub.Publish(ctx, i.channel, key).Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// NoopInvalidator is used when Redis is not configured.
type NoopInvalidator struct{}

// Invalidate does nothing.
func (NoopInvalidator) Invalidate(context.Context, ...string) error { return nil }
