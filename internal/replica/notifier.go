package replica

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fenjian-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisFeed 基于 Redis Pub/Sub 的变更推送通道
type RedisFeed struct {
	client  *redis.Client
	channel string
}

// NewRedisFeed 创建变更推送通道
func NewRedisFeed(client *redis.Client, channel string) *RedisFeed {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "packages:changes"
	}
	return &RedisFeed{client: client, channel: channel}
}

// Publish 广播一条变更事件
func (f *RedisFeed) Publish(ctx context.Context, event ChangeEvent) error {
	if f == nil || f.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// Subscribe 阻塞消费变更事件，直到 ctx 取消或通道出错。
// 订阅确认后回调 onStatus(true)，通道出错时回调 onStatus(false) 并返回错误。
func (f *RedisFeed) Subscribe(ctx context.Context, handler func(ChangeEvent), onStatus func(subscribed bool)) error {
	if f == nil || f.client == nil {
		return errors.New("change feed not initialized")
	}

	sub := f.client.Subscribe(ctx, f.channel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		if onStatus != nil {
			onStatus(false)
		}
		return err
	}
	if onStatus != nil {
		onStatus(true)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				if onStatus != nil {
					onStatus(false)
				}
				return errors.New("change feed channel closed")
			}
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warnw("change_feed_decode_failed", "error", err)
				continue
			}
			if handler != nil {
				handler(event)
			}
		}
	}
}
