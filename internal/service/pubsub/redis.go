package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/pkg/logger"
)

const channelPrefix = "feedback:"

// RedisPubSub fans new feedback out across processes, one channel per game.
type RedisPubSub struct {
	client       *redis.Client
	logger       *logger.Logger
	subscribers  map[string]*redis.PubSub // game ID -> subscriber
	subscriberMu sync.Mutex
}

func NewRedisPubSub(client *redis.Client, logger *logger.Logger) *RedisPubSub {
	return &RedisPubSub{
		client:      client,
		logger:      logger,
		subscribers: make(map[string]*redis.PubSub),
	}
}

func (ps *RedisPubSub) channelName(gameID string) string {
	return channelPrefix + gameID
}

func (ps *RedisPubSub) Publish(ctx context.Context, feedback *domain.Feedback) error {
	message, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	channel := ps.channelName(feedback.GameID)
	if err := ps.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe starts delivering the game's feedback to callback until
// Unsubscribe or ctx cancellation. Subscribing twice for a game is a no-op.
func (ps *RedisPubSub) Subscribe(ctx context.Context, gameID string, callback func(*domain.Feedback)) error {
	channel := ps.channelName(gameID)

	ps.subscriberMu.Lock()
	if _, exists := ps.subscribers[gameID]; exists {
		ps.subscriberMu.Unlock()
		return nil
	}
	sub := ps.client.Subscribe(ctx, channel)
	ps.subscribers[gameID] = sub
	ps.subscriberMu.Unlock()

	go func() {
		defer func() {
			sub.Close()
			ps.subscriberMu.Lock()
			delete(ps.subscribers, gameID)
			ps.subscriberMu.Unlock()
		}()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var feedback domain.Feedback
				if err := json.Unmarshal([]byte(msg.Payload), &feedback); err != nil {
					ps.logger.Errorf("failed to unmarshal feedback from channel %s: %v", channel, err)
					continue
				}
				callback(&feedback)

			case <-ctx.Done():
				return
			}
		}
	}()

	ps.logger.Infof("subscribed to feedback channel: %s", channel)
	return nil
}

func (ps *RedisPubSub) Unsubscribe(gameID string) {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	if sub, exists := ps.subscribers[gameID]; exists {
		sub.Close()
		delete(ps.subscribers, gameID)
	}
}

func (ps *RedisPubSub) Close() {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	for gameID, sub := range ps.subscribers {
		sub.Close()
		delete(ps.subscribers, gameID)
	}
}
