package engine

import (
	"FriendCall/internal/game/table"
)

// PlayCard 出牌：校验跟花色，处理朋友亮身份、收墩与终局
func (e *Engine) PlayCard(playerID string, card table.Card) (Result, error) {
	t := e.Table
	p, ok := t.Player(playerID)
	if !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	if t.Phase != table.PhaseTrickPlaying {
		return Result{}, newError(KindPhase, "not in trick playing phase")
	}
	if cur := t.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return Result{}, newError(KindTurn, "not your turn to play")
	}
	// 按 (suit, rank) 值匹配
	idx := table.IndexOf(p.Hand, card)
	if idx < 0 {
		return Result{}, newError(KindRule, "you don't hold %v", card)
	}
	trick := t.CurrentTrick
	if lead, ok := trick.LeadSuit(); ok && card.Suit != lead && table.HasSuit(p.Hand, lead) {
		return Result{}, newError(KindRule, "you must follow suit %v", lead)
	}

	p.Hand = append(p.Hand[:idx:idx], p.Hand[idx+1:]...)
	if len(trick.Plays) == 0 {
		trick.LeadPlayerID = playerID
		t.LeadPlayerIndex = p.Seat
	}
	trick.Plays = append(trick.Plays, table.Play{PlayerID: playerID, Card: card})
	e.touch()

	played := card
	res := Result{Kind: CardPlayed, PlayerID: playerID, Card: &played}

	// 朋友牌第一次打出：亮身份并按新阵营重算已完成墩的分数
	if t.IsFriendCard(card) && !p.IsCaller && p.Team != table.TeamCaller {
		p.Team = table.TeamCaller
		e.recomputeScores()
		res.Revealed = playerID
	}

	if len(trick.Plays) < len(t.Players) {
		t.CurrentPlayerIndex = (t.CurrentPlayerIndex + 1) % len(t.Players)
		res.NextPlayerID = t.CurrentPlayer().ID
		return res, nil
	}

	winnerID := e.sealTrick()
	res.TrickWinner = winnerID
	res.TrickPoints = t.CompletedTricks[len(t.CompletedTricks)-1].Points()

	if len(t.CompletedTricks) == table.TricksPerGame {
		e.finish()
		res.Kind = GameComplete
		res.GameWinner = *t.Winner
		res.CallerPoints = t.CallerTeamPoints
		res.OpponentPoints = t.OpponentTeamPoints
		return res, nil
	}

	res.Kind = TrickComplete
	res.NextPlayerID = winnerID
	return res, nil
}

// sealTrick 收墩：定赢家、归档、重算分数、赢家领出下一墩
func (e *Engine) sealTrick() string {
	t := e.Table
	if t.TrumpSuit == nil {
		panic("engine: trick completed without a trump suit")
	}
	trick := t.CurrentTrick
	w := TrickWinner(trick.Plays, *t.TrumpSuit)
	winnerID := trick.Plays[w].PlayerID

	trick.WinnerID = winnerID
	trick.Complete = true
	t.CompletedTricks = append(t.CompletedTricks, trick)
	t.CurrentTrick = &table.Trick{}
	e.recomputeScores()

	seat, _ := t.Seat(winnerID)
	t.CurrentPlayerIndex = seat
	t.LeadPlayerIndex = seat
	return winnerID
}

// TrickWinner returns the index of the winning play. Trump beats the lead
// suit, the lead suit beats everything else, and higher rank wins within a
// suit. Returns -1 for an empty trick.
func TrickWinner(plays []table.Play, trump table.Suit) int {
	if len(plays) == 0 {
		return -1
	}
	lead := plays[0].Card.Suit
	best, bestStrength := -1, -1
	for i, pl := range plays {
		if s := strength(pl.Card, lead, trump); s > bestStrength {
			best, bestStrength = i, s
		}
	}
	return best
}

// 将牌 > 首出花色 > 其他花色（永远赢不了）
func strength(c table.Card, lead, trump table.Suit) int {
	switch c.Suit {
	case trump:
		return 2*len(table.Ranks) + int(c.Rank)
	case lead:
		return len(table.Ranks) + int(c.Rank)
	default:
		return 0
	}
}
