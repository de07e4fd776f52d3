package manager

import (
	"errors"
	"fmt"

	"FriendCall/internal/game/engine"
	"FriendCall/internal/game/table"
)

var (
	// ErrMatchNotFound 也匹配 engine.ErrNotFound
	ErrMatchNotFound = fmt.Errorf("match not found: %w", engine.ErrNotFound)
	ErrMatchClosed   = errors.New("match closed")
	ErrBusy          = errors.New("match action queue is full")
)

// JoinRequest POST /games/:id/join
type JoinRequest struct {
	Name string `json:"name" binding:"required"`
}

// JoinResponse 座位令牌只在这里发一次
type JoinResponse struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	Started  bool   `json:"started"`
}

// BidRequest bid 为 null 表示 pass
type BidRequest struct {
	Bid *int `json:"bid"`
}

type TrumpRequest struct {
	Suit *table.Suit `json:"suit" binding:"required"`
}

type FriendsRequest struct {
	Cards []table.Card `json:"cards" binding:"required"`
}

type PlayRequest struct {
	Card *table.Card `json:"card" binding:"required"`
}

type ChatRequest struct {
	Text string `json:"text"`
}

// resultPayload 广播给桌上所有人的结果事件
type resultPayload struct {
	MatchID string `json:"matchId"`
	engine.Result
}

type handPayload struct {
	MatchID string       `json:"matchId"`
	Cards   []table.Card `json:"cards"`
}

type errorPayload struct {
	MatchID string `json:"matchId,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error"`
}

type chatPayload struct {
	MatchID string `json:"matchId"`
	From    string `json:"from"`
	Text    string `json:"text"`
}
