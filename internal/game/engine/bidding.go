package engine

import (
	"FriendCall/internal/game/table"
)

const (
	MinBid = 150
	MaxBid = 250
)

// NextBid 叫分阶梯：200 以下每档 +5，200 起每档 +10，封顶 250
func NextBid(current int) int {
	switch {
	case current < MinBid:
		return MinBid
	case current < 200:
		return current + 5
	case current < MaxBid:
		return current + 10
	default:
		return MaxBid
	}
}

// MinValidBid is the smallest bid that may follow the current winning bid.
func MinValidBid(winning int) int {
	if winning == 0 {
		return MinBid
	}
	return NextBid(winning)
}

// ValidateBid checks bid against the ladder given the current winning bid.
func ValidateBid(winning, bid int) error {
	if winning >= MaxBid {
		return newError(KindRule, "no bid can exceed %d", MaxBid)
	}
	low := MinValidBid(winning)
	if bid < low || bid > MaxBid {
		return newError(KindRule, "invalid bid amount %d: must be between %d and %d", bid, low, MaxBid)
	}
	if bid < 200 && bid%5 != 0 {
		return newError(KindRule, "bid %d must be a multiple of 5", bid)
	}
	if bid >= 200 && bid%10 != 0 {
		return newError(KindRule, "bid %d must be a multiple of 10 from 200", bid)
	}
	return nil
}

// ProcessBid 叫分；bid 为 nil 表示 pass
func (e *Engine) ProcessBid(playerID string, bid *int) (Result, error) {
	t := e.Table
	p, ok := t.Player(playerID)
	if !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	if t.Phase != table.PhaseBidding {
		return Result{}, newError(KindPhase, "not in bidding phase")
	}
	if cur := t.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return Result{}, newError(KindTurn, "not your turn to bid")
	}

	if bid != nil {
		if err := ValidateBid(t.WinningBid, *bid); err != nil {
			return Result{}, err
		}
	} else if !e.Rules.RedealOnAllPass && t.CallerID == "" && e.activeBidders() == 1 {
		return Result{}, newError(KindRule, "the last bidder must open when nobody has bid")
	}

	// 校验完成，开始修改状态
	var recorded *int
	if bid != nil {
		v := *bid
		recorded = &v
		t.WinningBid = v
		t.CallerID = playerID
		p.CurrentBid = &v
		p.HasPassed = false
	} else {
		p.HasPassed = true
	}
	t.BidHistory = append(t.BidHistory, table.BidEntry{
		PlayerID: playerID,
		Bid:      recorded,
		Round:    t.Round,
		At:       e.now(),
	})
	e.touch()

	active := e.activeBidders()
	if t.CallerID != "" && (active <= 1 || (recorded != nil && *recorded == MaxBid)) {
		e.closeAuction()
		return Result{
			Kind:         BiddingComplete,
			PlayerID:     playerID,
			Bid:          recorded,
			NextPlayerID: t.CallerID,
		}, nil
	}

	if active == 0 {
		e.redeal()
		return Result{
			Kind:         Redeal,
			PlayerID:     playerID,
			NextPlayerID: t.CurrentPlayer().ID,
		}, nil
	}

	e.advanceBidder()
	return Result{
		Kind:         BidAccepted,
		PlayerID:     playerID,
		Bid:          recorded,
		NextPlayerID: t.CurrentPlayer().ID,
	}, nil
}

func (e *Engine) activeBidders() int {
	n := 0
	for _, p := range e.Table.Players {
		if !p.HasPassed {
			n++
		}
	}
	return n
}

// advanceBidder 顺时针找下一位未 pass 的玩家
func (e *Engine) advanceBidder() {
	t := e.Table
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		next := (t.CurrentPlayerIndex + i) % n
		if !t.Players[next].HasPassed {
			t.CurrentPlayerIndex = next
			return
		}
	}
}

// closeAuction 确定定约人，其余玩家暂定为对手
func (e *Engine) closeAuction() {
	t := e.Table
	for _, p := range t.Players {
		if p.ID == t.CallerID {
			p.IsCaller = true
			p.Team = table.TeamCaller
			t.CurrentPlayerIndex = p.Seat
		} else {
			p.IsCaller = false
			p.Team = table.TeamOpponent
		}
	}
	t.Phase = table.PhaseFriendSelection
}

// redeal 无人叫分：收回所有牌重新洗发，首叫顺延一位
func (e *Engine) redeal() {
	t := e.Table
	for _, p := range t.Players {
		p.Hand = nil
		p.HasPassed = false
		p.CurrentBid = nil
	}
	t.Round++
	e.dealInitial()
	t.CurrentPlayerIndex = t.Round % len(t.Players)
	t.LeadPlayerIndex = t.CurrentPlayerIndex
}
