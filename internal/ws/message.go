package ws

import (
	"encoding/json"

	"gameserver/internal/domain"
)

// входящие сообщения от клиента
type inbound struct {
	Type string          `json:"type"`
	Move json.RawMessage `json:"move,omitempty"`
}

// исходящие сообщения клиенту
type outbound struct {
	Type  string        `json:"type"`
	Match *domain.Match `json:"match,omitempty"`
	Error string        `json:"error,omitempty"`
}

const (
	msgSnapshot = "snapshot"
	msgMove     = "move"
	msgPing     = "ping"
	msgPong     = "pong"
	msgError    = "error"
)
