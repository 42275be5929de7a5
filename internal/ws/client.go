package ws

import (
	"encoding/json"
	"sync"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client - один зритель (или игрок) матча
type Client struct {
	UserID  string
	MatchID string
	Conn    *websocket.Conn
	Send    chan []byte

	Hub  *Hub
	done chan struct{}
	once sync.Once

	mu          sync.Mutex
	lastVersion int64
}

func NewClient(userID, matchID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:  userID,
		MatchID: matchID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Hub:     hub,
		done:    make(chan struct{}),
	}
}

// Run подписывает клиента на матч и обслуживает соединение до разрыва
func (c *Client) Run() {
	go c.writePump()

	if err := c.Hub.Join(c); err != nil {
		logger.Warn("ws join failed", "user_id", c.UserID, "match_id", c.MatchID, "error", err)
		c.sendError(err)
		c.close()
		return
	}
	c.readPump()
}

// read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Leave(c)
		c.close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.Hub.HandleMessage(c, msg)
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			// дописываем то, что уже в очереди (например, ошибку подключения)
			for len(c.Send) > 0 {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// неблокирующая отправка: медленный клиент пропускает снимок,
// следующий все равно содержит полное состояние
func (c *Client) send(msg outbound) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal failed", "error", err)
		return
	}
	select {
	case c.Send <- payload:
	case <-c.done:
	default:
		logger.Warn("ws send buffer full, dropping message", "user_id", c.UserID, "match_id", c.MatchID)
	}
}

// sendSnapshot пропускает снимки не новее уже отправленного: снимок из Join
// и рассылка брокера могут прийти в любом порядке
func (c *Client) sendSnapshot(m *domain.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.Version <= c.lastVersion {
		return
	}
	c.lastVersion = m.Version
	c.send(outbound{Type: msgSnapshot, Match: m})
}

func (c *Client) sendError(err error) {
	c.send(outbound{Type: msgError, Error: err.Error()})
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}
