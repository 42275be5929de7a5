package notify

import (
	"context"
	"sync"

	"gameserver/internal/domain"
)

// Broker рассылает снимки матча после каждого зафиксированного изменения
type Broker interface {
	Publish(ctx context.Context, m *domain.Match) error
	Subscribe(ctx context.Context, matchID string) (*Subscription, error)
}

// Subscription - поток снимков одного матча. C закрывается после Close.
type Subscription struct {
	C <-chan *domain.Match

	once  sync.Once
	close func()
}

func (s *Subscription) Close() {
	s.once.Do(s.close)
}

func channelName(matchID string) string {
	return "match:" + matchID
}
