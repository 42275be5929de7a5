package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
	"gameserver/internal/metrics"
	"gameserver/internal/notify"
	"gameserver/internal/service"
)

var errUnknownMessage = errors.New("unknown message type")

// MatchAPI - операции сервиса матчей, которые нужны хабу
type MatchAPI interface {
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)
	SubmitMove(ctx context.Context, matchID, playerID string, move json.RawMessage) (*domain.Match, error)
	ViewFor(m *domain.Match, viewerID string) *domain.Match
}

// Hub держит одну подписку брокера на матч и раздает снимки всем его зрителям.
// Каждый зритель получает снимок, отредактированный для него.
type Hub struct {
	matches  MatchAPI
	broker   notify.Broker
	attempts uint
	timeout  time.Duration

	mu       sync.Mutex
	watchers map[string]map[*Client]struct{}
	subs     map[string]*notify.Subscription
}

func NewHub(matches MatchAPI, broker notify.Broker, attempts uint) *Hub {
	return &Hub{
		matches:  matches,
		broker:   broker,
		attempts: attempts,
		timeout:  5 * time.Second,
		watchers: make(map[string]map[*Client]struct{}),
		subs:     make(map[string]*notify.Subscription),
	}
}

// Join регистрирует клиента и отправляет ему текущий снимок матча.
// Подписка и регистрация идут до чтения снимка: изменение, зафиксированное
// во время чтения, придет через брокер, а устаревший снимок клиент отбросит по версии.
func (h *Hub) Join(c *Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.register(ctx, c); err != nil {
		return err
	}
	metrics.WatchersConnected.Inc()

	m, err := h.matches.GetMatch(ctx, c.MatchID)
	if err != nil {
		h.Leave(c)
		return err
	}

	logger.Debug("ws watcher joined", "user_id", c.UserID, "match_id", c.MatchID)
	c.sendSnapshot(h.matches.ViewFor(m, c.UserID))
	return nil
}

// register добавляет клиента к зрителям матча. Подписка на брокер (для redis
// это сетевой вызов) делается без блокировки хаба.
func (h *Hub) register(ctx context.Context, c *Client) error {
	var fresh *notify.Subscription
	for {
		h.mu.Lock()
		if _, ok := h.subs[c.MatchID]; !ok && fresh != nil {
			h.subs[c.MatchID] = fresh
			h.watchers[c.MatchID] = make(map[*Client]struct{})
			go h.pump(c.MatchID, fresh)
			fresh = nil
		}
		if _, ok := h.subs[c.MatchID]; ok {
			h.watchers[c.MatchID][c] = struct{}{}
			h.mu.Unlock()
			// пока подписывались, подписку успел создать другой клиент
			if fresh != nil {
				fresh.Close()
			}
			return nil
		}
		h.mu.Unlock()

		sub, err := h.broker.Subscribe(ctx, c.MatchID)
		if err != nil {
			return err
		}
		fresh = sub
	}
}

// Leave снимает клиента; последняя отписка закрывает подписку брокера
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[c.MatchID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	metrics.WatchersConnected.Dec()

	if len(set) == 0 {
		delete(h.watchers, c.MatchID)
		if sub, ok := h.subs[c.MatchID]; ok {
			sub.Close()
			delete(h.subs, c.MatchID)
		}
	}
}

// Watchers возвращает число зрителей матча
func (h *Hub) Watchers(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[matchID])
}

func (h *Hub) pump(matchID string, sub *notify.Subscription) {
	for m := range sub.C {
		h.broadcast(m)
	}
	logger.Debug("ws subscription closed", "match_id", matchID)
}

func (h *Hub) broadcast(m *domain.Match) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.watchers[m.ID] {
		c.sendSnapshot(h.matches.ViewFor(m, c.UserID))
	}
}

// HandleMessage обрабатывает сообщение клиента. Ход проходит через тот же
// сервис, что и HTTP; новый снимок придет всем зрителям через брокер.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(errUnknownMessage)
		return
	}

	switch msg.Type {
	case msgPing:
		c.send(outbound{Type: msgPong})
	case msgMove:
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		_, err := service.Retry(ctx, h.attempts, "ws move", func(ctx context.Context) (*domain.Match, error) {
			return h.matches.SubmitMove(ctx, c.MatchID, c.UserID, msg.Move)
		})
		if err != nil {
			c.sendError(err)
		}
	default:
		c.sendError(errUnknownMessage)
	}
}
