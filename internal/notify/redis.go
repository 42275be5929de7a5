package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"gameserver/internal/domain"
	"gameserver/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker - pub/sub через redis, чтобы зрители на любом инстансе получали обновления
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

// NewRedisClient разбирает REDIS_URL и проверяет соединение
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (b *RedisBroker) Publish(ctx context.Context, m *domain.Match) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	return b.rdb.Publish(ctx, channelName(m.ID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, matchID string) (*Subscription, error) {
	ps := b.rdb.Subscribe(ctx, channelName(matchID))
	// дожидаемся подтверждения подписки, иначе первые сообщения теряются
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", matchID, err)
	}

	out := make(chan *domain.Match, 8)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var m domain.Match
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				logger.Warn("bad match payload", "match_id", matchID, "error", err)
				continue
			}
			select {
			case out <- &m:
			case <-done:
				return
			}
		}
	}()

	return &Subscription{
		C: out,
		close: func() {
			close(done)
			_ = ps.Close()
		},
	}, nil
}
