package engine

import "FriendCall/internal/game/table"

// Kind 结果标签；调用方按 Kind 分支处理，不做类型断言
type Kind string

const (
	PlayerJoined    Kind = "player_joined"
	PlayerLeft      Kind = "player_left"
	PresenceChanged Kind = "presence_changed"
	GameStarted     Kind = "game_started"
	BidAccepted     Kind = "bid_placed"
	BiddingComplete Kind = "bidding_complete"
	Redeal          Kind = "redeal"
	TrumpSelected   Kind = "trump_selected"
	PlayStarted     Kind = "play_started"
	CardPlayed      Kind = "card_played"
	TrickComplete   Kind = "trick_complete"
	GameComplete    Kind = "game_complete"
)

// Result 描述一次成功操作发生了什么，供编排层广播
type Result struct {
	Kind     Kind   `json:"kind"`
	PlayerID string `json:"playerId,omitempty"`

	// 下一位行动玩家；对局结束时为空
	NextPlayerID string `json:"nextPlayerId,omitempty"`

	Bid   *int         `json:"bid,omitempty"`
	Suit  *table.Suit  `json:"suit,omitempty"`
	Card  *table.Card  `json:"card,omitempty"`
	Cards []table.Card `json:"cards,omitempty"`

	// 本次出牌暴露的朋友
	Revealed string `json:"revealed,omitempty"`

	// TrickComplete / GameComplete
	TrickWinner string `json:"trickWinner,omitempty"`
	TrickPoints int    `json:"trickPoints,omitempty"`

	// GameComplete
	GameWinner     table.Team `json:"gameWinner,omitempty"`
	CallerPoints   int        `json:"callerPoints,omitempty"`
	OpponentPoints int        `json:"opponentPoints,omitempty"`

	Connected *bool `json:"connected,omitempty"`
}
