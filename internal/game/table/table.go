package table

import (
	"time"
)

const (
	// TableSize 固定五人桌
	TableSize = 5
	// InitialHand 叫分前每人 4 张
	InitialHand = 4
	// FullHand 定约后补满到 8 张
	FullHand = 8
	// TricksPerGame 每局 8 墩
	TricksPerGame = 8
)

// Phase 对局阶段，只能单向推进
type Phase string

const (
	PhaseWaiting         Phase = "WAITING_FOR_PLAYERS"
	PhaseBidding         Phase = "BIDDING"
	PhaseFriendSelection Phase = "FRIEND_SELECTION"
	PhaseTrickPlaying    Phase = "TRICK_PLAYING"
	PhaseGameOver        Phase = "GAME_OVER"
)

// Team 阵营
type Team string

const (
	TeamUnassigned Team = "UNASSIGNED"
	TeamCaller     Team = "CALLER"
	TeamOpponent   Team = "OPPONENT"
)

// Player 只归 Table 所有，不对外共享
type Player struct {
	ID         string
	Name       string
	Seat       int
	Hand       []Card
	Team       Team
	IsCaller   bool
	CurrentBid *int
	HasPassed  bool
	Connected  bool
}

// BidEntry 叫分记录，Bid 为 nil 表示 pass
type BidEntry struct {
	PlayerID string    `json:"playerId"`
	Bid      *int      `json:"bid"`
	Round    int       `json:"round"`
	At       time.Time `json:"timestamp"`
}

// Play 一次出牌
type Play struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// Trick 一墩
type Trick struct {
	Plays        []Play `json:"plays"`
	LeadPlayerID string `json:"leadPlayerId,omitempty"`
	WinnerID     string `json:"winnerId,omitempty"`
	Complete     bool   `json:"complete"`
}

// LeadSuit 首张牌的花色；空墩返回 false
func (t *Trick) LeadSuit() (Suit, bool) {
	if len(t.Plays) == 0 {
		return 0, false
	}
	return t.Plays[0].Card.Suit, true
}

// Points 本墩总分
func (t *Trick) Points() int {
	total := 0
	for _, p := range t.Plays {
		total += p.Card.Points()
	}
	return total
}

// Cards 本墩所有牌
func (t *Trick) Cards() []Card {
	out := make([]Card, 0, len(t.Plays))
	for _, p := range t.Plays {
		out = append(out, p.Card)
	}
	return out
}

// Table 一局对局的全部可变状态
type Table struct {
	ID    string
	Phase Phase

	// seat index -> player，另有 id -> seat 索引
	Players []*Player
	seats   map[string]int

	CurrentPlayerIndex int
	LeadPlayerIndex    int

	Deck       []Card
	BidHistory []BidEntry
	WinningBid int
	CallerID   string

	TrumpSuit   *Suit
	FriendCards []Card

	CurrentTrick    *Trick
	CompletedTricks []*Trick

	CallerTeamPoints   int
	OpponentTeamPoints int
	Winner             *Team

	// 发牌轮次，重新发牌时 +1
	Round int

	CreatedAt    time.Time
	LastActivity time.Time
}

// New 创建一张空桌
func New(id string, now time.Time) *Table {
	return &Table{
		ID:           id,
		Phase:        PhaseWaiting,
		Players:      make([]*Player, 0, TableSize),
		seats:        make(map[string]int, TableSize),
		CurrentTrick: &Trick{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (t *Table) IsFull() bool { return len(t.Players) == TableSize }

// Seat returns the seat index of a player id.
func (t *Table) Seat(playerID string) (int, bool) {
	s, ok := t.seats[playerID]
	return s, ok
}

func (t *Table) Player(playerID string) (*Player, bool) {
	s, ok := t.seats[playerID]
	if !ok {
		return nil, false
	}
	return t.Players[s], true
}

// CurrentPlayer 当前行动玩家
func (t *Table) CurrentPlayer() *Player {
	if t.CurrentPlayerIndex < 0 || t.CurrentPlayerIndex >= len(t.Players) {
		return nil
	}
	return t.Players[t.CurrentPlayerIndex]
}

// Caller 定约人
func (t *Table) Caller() *Player {
	p, _ := t.Player(t.CallerID)
	return p
}

// SeatPlayer 追加一名玩家，调用方负责校验容量
func (t *Table) SeatPlayer(p *Player) {
	p.Seat = len(t.Players)
	t.Players = append(t.Players, p)
	t.seats[p.ID] = p.Seat
}

// Unseat 移除玩家并压缩座位，仅用于开局前
func (t *Table) Unseat(playerID string) bool {
	s, ok := t.seats[playerID]
	if !ok {
		return false
	}
	t.Players = append(t.Players[:s], t.Players[s+1:]...)
	t.reindex()
	return true
}

func (t *Table) reindex() {
	t.seats = make(map[string]int, len(t.Players))
	for i, p := range t.Players {
		p.Seat = i
		t.seats[p.ID] = i
	}
}

// PlayerIDs 按座位顺序
func (t *Table) PlayerIDs() []string {
	ids := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// IsFriendCard reports whether c is one of the caller's designated friend cards.
func (t *Table) IsFriendCard(c Card) bool {
	return Contains(t.FriendCards, c)
}

// AllCards 收集桌上每一张牌（牌堆、手牌、当前墩、已完成墩），用于校验守恒
func (t *Table) AllCards() []Card {
	out := make([]Card, 0, 40)
	out = append(out, t.Deck...)
	for _, p := range t.Players {
		out = append(out, p.Hand...)
	}
	if t.CurrentTrick != nil {
		out = append(out, t.CurrentTrick.Cards()...)
	}
	for _, tr := range t.CompletedTricks {
		out = append(out, tr.Cards()...)
	}
	return out
}
