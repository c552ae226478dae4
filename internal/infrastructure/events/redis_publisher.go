// Package events announces staged articles on a Redis stream.
package events

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
)

// DefaultStream is the stream librarians consume staged-article events from.
const DefaultStream = "memlib:staging:articles"

// RedisPublisher implements domain.StagedEventPublisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisPublisherWithURL creates a publisher from a redis:// URL.
func NewRedisPublisherWithURL(url, stream string, maxLen int64) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisPublisher(redis.NewClient(opts), stream, maxLen), nil
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client *redis.Client, stream string, maxLen int64) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen}
}

// PublishStaged appends the event to the stream.
func (p *RedisPublisher) PublishStaged(ctx context.Context, event domain.StagedEvent) error {
	if event.ArticleID == "" {
		return errors.New("event has no article id")
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: eventToValues(event),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}

// Ping checks if Redis is available.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func eventToValues(event domain.StagedEvent) map[string]interface{} {
	return map[string]interface{}{
		"event_id":          event.EventID,
		"event_type":        event.EventType,
		"article_id":        event.ArticleID,
		"source_type":       event.SourceType,
		"staged_term_count": strconv.Itoa(event.StagedTermCount),
		"created_at":        event.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
