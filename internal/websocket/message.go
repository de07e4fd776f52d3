package websocket

import "encoding/json"

// 服务端 → 客户端事件
const (
	EventGameState      = "game_state"
	EventHand           = "hand"
	EventPlayerJoined   = "player_joined"
	EventPlayerLeft     = "player_left"
	EventPresence       = "presence_changed"
	EventGameStarted    = "game_started"
	EventBidPlaced      = "bid_placed"
	EventBiddingDone    = "bidding_complete"
	EventRedeal         = "redeal"
	EventTrumpSelected  = "trump_selected"
	EventPlayStarted    = "play_started"
	EventCardPlayed     = "card_played"
	EventFriendRevealed = "friend_revealed"
	EventTrickComplete  = "trick_complete"
	EventGameComplete   = "game_complete"
	EventChat           = "chat"
	EventError          = "error"
)

// 客户端 → 服务端事件
const (
	InBid     = "bid"
	InTrump   = "trump"
	InFriends = "friends"
	InPlay    = "play"
	InHand    = "hand"
	InChat    = "chat"
)

type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// IncomingMessage Data 保留原始 JSON，由游戏层按 Event 解析
type IncomingMessage struct {
	From  string          `json:"from"`
	Match string          `json:"-"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
