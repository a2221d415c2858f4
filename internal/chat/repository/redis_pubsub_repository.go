package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"vendor_chat_portal/internal/chat/domain"
	"vendor_chat_portal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub realtime fan-out of websocket envelopes over named channels
type PubSub interface {
	Publish(channel string, resp domain.WSResponse) error
	// Subscribe deliver every envelope published on channel to handler until
	// ctx is canceled
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
	}
}

// Publish serialize the envelope and publish it on channel
func (r *RedisPubSub) Publish(channel string, resp domain.WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Publish(context.Background(), channel, data).Err()
}

// Subscribe listen on channel and hand each envelope to handler.
// The subscription closes when ctx is canceled.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(context.Background(), channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Error("pubsub payload unmarshal err", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
			}
		}
	}()
	return nil
}
