package notify

import (
	"context"
	"sync"

	"gameserver/internal/domain"
)

// LocalBroker - рассылка внутри одного процесса (без redis и в тестах).
// Медленный подписчик пропускает снимки, а не тормозит запись.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan *domain.Match]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan *domain.Match]struct{})}
}

func (b *LocalBroker) Publish(ctx context.Context, m *domain.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[m.ID] {
		select {
		case ch <- m.Clone():
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, matchID string) (*Subscription, error) {
	ch := make(chan *domain.Match, 8)

	b.mu.Lock()
	if b.subs[matchID] == nil {
		b.subs[matchID] = make(map[chan *domain.Match]struct{})
	}
	b.subs[matchID][ch] = struct{}{}
	b.mu.Unlock()

	return &Subscription{
		C: ch,
		close: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[matchID], ch)
			if len(b.subs[matchID]) == 0 {
				delete(b.subs, matchID)
			}
			close(ch)
		},
	}, nil
}
