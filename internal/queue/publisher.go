package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// DefaultQueue is the Redis list merged records are published to
const DefaultQueue = "exports:records"

// Publisher pushes export messages to a Redis queue
type Publisher struct {
	client    *redis.Client
	queueName string
}

// NewPublisher creates a new queue publisher
func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

// PublishBatch pushes all messages in one pipeline. LPUSH paired with the
// consumer's RPOP keeps the queue FIFO, so list order survives the trip.
func (p *Publisher) PublishBatch(ctx context.Context, msgs []*domain.ExportMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		pipe.LPush(ctx, p.queueName, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}

	return nil
}

// QueueLength returns the current queue length
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queueName).Result()
}
