package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	seenPrefix    = "whatsapp:seen:"
	channelKey    = "whatsapp:channel"
	lockKeyPrefix = "lock:"
)

type Client struct {
	rdb *redis.Client
}

// ChannelStatus is the last known state of the messaging channel.
type ChannelStatus struct {
	Ready  bool      `json:"ready"`
	Reason string    `json:"reason,omitempty"`
	Since  time.Time `json:"since"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// MarkMessageSeen records an inbound message id. It returns false when the id
// was already recorded within ttl.
func (c *Client) MarkMessageSeen(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, seenPrefix+messageID, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message seen: %w", err)
	}
	return ok, nil
}

// Channel status snapshot
func (c *Client) SetChannelStatus(ctx context.Context, status ChannelStatus) error {
	jsonData, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal channel status: %w", err)
	}
	return c.rdb.Set(ctx, channelKey, jsonData, 0).Err()
}

func (c *Client) GetChannelStatus(ctx context.Context) (*ChannelStatus, error) {
	val, err := c.rdb.Get(ctx, channelKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("channel status not found")
		}
		return nil, fmt.Errorf("failed to get channel status: %w", err)
	}

	var status ChannelStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel status: %w", err)
	}
	return &status, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
