// Package redis publishes recommendation sets to Redis so applications can
// query "people you might know" for a user without touching the batch output
// files.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kithlabs/kith/pkg/engine"
)

const defaultKeyPrefix = "kith"

// Publisher writes each source vertex's candidates to a Redis set under
// <prefix>:recs:<source>. A publish replaces the previous set for every
// source it covers, so stale candidates from earlier runs disappear.
type Publisher struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPublisher wraps an existing client. ttl > 0 expires each set after the
// given duration; zero keeps them until the next publish.
func NewPublisher(client *redis.Client, ttl time.Duration) *Publisher {
	return &Publisher{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

func (p *Publisher) makeKey(sourceID string) string {
	return fmt.Sprintf("%s:recs:%s", p.prefix, sourceID)
}

// Publish groups records by source and writes every set in one pipelined
// round trip.
func (p *Publisher) Publish(ctx context.Context, recs []engine.Recommendation) error {
	bySource := make(map[string][]interface{})
	for _, r := range recs {
		bySource[r.Source] = append(bySource[r.Source], r.Candidate)
	}

	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for source, candidates := range bySource {
			key := p.makeKey(source)
			pipe.Del(ctx, key)
			pipe.SAdd(ctx, key, candidates...)
			if p.ttl > 0 {
				pipe.Expire(ctx, key, p.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish recommendations: %w", err)
	}
	return nil
}

// Candidates returns the published set for one source vertex. A missing key
// yields an empty slice, not an error.
func (p *Publisher) Candidates(ctx context.Context, sourceID string) ([]string, error) {
	members, err := p.client.SMembers(ctx, p.makeKey(sourceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return members, nil
}
