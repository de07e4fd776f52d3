package engine

import (
	"time"

	"FriendCall/internal/game/table"
)

// PlayerView 公开的玩家信息：只有手牌数量，没有手牌内容
type PlayerView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Seat       int        `json:"seat"`
	Team       table.Team `json:"team"`
	IsCaller   bool       `json:"isCaller"`
	HandCount  int        `json:"handCount"`
	HasPassed  bool       `json:"hasPassed"`
	Connected  bool       `json:"connected"`
	CurrentBid *int       `json:"currentBid,omitempty"`
}

// Snapshot 可序列化的共享视图
type Snapshot struct {
	MatchID            string           `json:"matchId"`
	Phase              table.Phase      `json:"phase"`
	Players            []PlayerView     `json:"players"`
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	CurrentPlayerID    string           `json:"currentPlayerId,omitempty"`
	LeadPlayerIndex    int              `json:"leadPlayerIndex"`
	BidHistory         []table.BidEntry `json:"bidHistory"`
	WinningBid         int              `json:"winningBid"`
	CallerID           string           `json:"callerId,omitempty"`
	TrumpSuit          *table.Suit      `json:"trumpSuit"`
	FriendCards        []table.Card     `json:"friendCards"`
	CurrentTrick       table.Trick      `json:"currentTrick"`
	CompletedTricks    int              `json:"completedTricks"`
	CallerTeamPoints   int              `json:"callerTeamPoints"`
	OpponentTeamPoints int              `json:"opponentTeamPoints"`
	GameWinner         *table.Team      `json:"gameWinner"`
	Round              int              `json:"round"`
	CreatedAt          time.Time        `json:"createdAt"`
	LastActivity       time.Time        `json:"lastActivity"`
}

// Snapshot 深拷贝当前状态，返回值与引擎不共享内存
func (e *Engine) Snapshot() Snapshot {
	t := e.Table
	s := Snapshot{
		MatchID:            t.ID,
		Phase:              t.Phase,
		Players:            make([]PlayerView, 0, len(t.Players)),
		CurrentPlayerIndex: t.CurrentPlayerIndex,
		LeadPlayerIndex:    t.LeadPlayerIndex,
		BidHistory:         make([]table.BidEntry, 0, len(t.BidHistory)),
		WinningBid:         t.WinningBid,
		CallerID:           t.CallerID,
		FriendCards:        append([]table.Card{}, t.FriendCards...),
		CompletedTricks:    len(t.CompletedTricks),
		CallerTeamPoints:   t.CallerTeamPoints,
		OpponentTeamPoints: t.OpponentTeamPoints,
		Round:              t.Round,
		CreatedAt:          t.CreatedAt,
		LastActivity:       t.LastActivity,
	}
	for _, p := range t.Players {
		s.Players = append(s.Players, PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Team:       p.Team,
			IsCaller:   p.IsCaller,
			HandCount:  len(p.Hand),
			HasPassed:  p.HasPassed,
			Connected:  p.Connected,
			CurrentBid: copyInt(p.CurrentBid),
		})
	}
	if t.Phase != table.PhaseWaiting && t.Phase != table.PhaseGameOver {
		if cur := t.CurrentPlayer(); cur != nil {
			s.CurrentPlayerID = cur.ID
		}
	}
	for _, b := range t.BidHistory {
		b.Bid = copyInt(b.Bid)
		s.BidHistory = append(s.BidHistory, b)
	}
	if t.TrumpSuit != nil {
		v := *t.TrumpSuit
		s.TrumpSuit = &v
	}
	if t.CurrentTrick != nil {
		s.CurrentTrick = table.Trick{
			Plays:        append([]table.Play{}, t.CurrentTrick.Plays...),
			LeadPlayerID: t.CurrentTrick.LeadPlayerID,
			WinnerID:     t.CurrentTrick.WinnerID,
			Complete:     t.CurrentTrick.Complete,
		}
	}
	if t.Winner != nil {
		v := *t.Winner
		s.GameWinner = &v
	}
	return s
}

// Hand 玩家自己的手牌（副本）；只能发给该玩家本人
func (e *Engine) Hand(playerID string) ([]table.Card, error) {
	p, ok := e.Table.Player(playerID)
	if !ok {
		return nil, newError(KindNotFound, "player %s not found", playerID)
	}
	h := append([]table.Card{}, p.Hand...)
	sortHand(h)
	return h, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
