package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/endurancy/platform/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueNotificationCleanup triggers the retention sweep out of cadence.
func (c *Client) EnqueueNotificationCleanup() error {
	return c.enqueue(TypeNotificationCleanup, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute))
}

// EnqueueSystemScan triggers the stale-critical-ticket scan out of cadence.
func (c *Client) EnqueueSystemScan() error {
	return c.enqueue(TypeSystemScan, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute))
}

func (c *Client) enqueue(taskType string, opts ...asynq.Option) error {
	task := asynq.NewTask(taskType, nil)
	if _, err := c.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
