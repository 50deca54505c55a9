package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// Consumer consumes export messages from a Redis queue
type Consumer struct {
	client    *redis.Client
	queueName string
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewConsumer creates a new queue consumer
func NewConsumer(client *redis.Client, queueName string, timeout time.Duration, logger zerolog.Logger) *Consumer {
	if queueName == "" {
		queueName = DefaultQueue
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
		logger:    logger,
	}
}

// ConsumeBatch consumes up to maxBatch messages from the queue.
// BRPOP blocks for the first item, then RPOP drains the rest without waiting.
// An empty batch means the wait timed out.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.ExportMessage, error) {
	msgs := make([]*domain.ExportMessage, 0, maxBatch)

	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return msgs, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) >= 2 {
		if msg, ok := c.decode(result[1]); ok {
			msgs = append(msgs, msg)
		}
	}

	for i := 1; i < maxBatch; i++ {
		raw, err := c.client.RPop(ctx, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return msgs, fmt.Errorf("rpop: %w", err)
		}

		if msg, ok := c.decode(raw); ok {
			msgs = append(msgs, msg)
		}
	}

	return msgs, nil
}

// decode skips malformed payloads so one bad message cannot stall the queue
func (c *Consumer) decode(raw string) (*domain.ExportMessage, bool) {
	var msg domain.ExportMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed message")
		return nil, false
	}
	return &msg, true
}
