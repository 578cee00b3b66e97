package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// SubmissionChannel is the pub/sub channel carrying submission outcome
// events for one site. The admin event stream subscribes per site or to
// AdminEventsChannel for the firehose.
func SubmissionChannel(siteName string) string {
	return fmt.Sprintf("submissions:%s", siteName)
}

// AdminEventsChannel carries every submission outcome event.
const AdminEventsChannel = "submissions:all"

// DailySubmissionKey counts submissions relayed on one UTC day. Keys expire
// after two days; the stats endpoint only reads today's.
func DailySubmissionKey(t time.Time) string {
	return fmt.Sprintf("submissions:count:%s", t.UTC().Format("2006-01-02"))
}
