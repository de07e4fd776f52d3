package engine

import (
	"FriendCall/internal/game/table"
)

const (
	MinFriendCards = 1
	MaxFriendCards = 2
)

// SelectTrump 定约人指定将牌花色；选朋友牌之前可以改
func (e *Engine) SelectTrump(playerID string, suit table.Suit) (Result, error) {
	t := e.Table
	if _, ok := t.Player(playerID); !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	if t.Phase != table.PhaseFriendSelection {
		return Result{}, newError(KindPhase, "trump can only be chosen during friend selection")
	}
	if playerID != t.CallerID {
		return Result{}, newError(KindAuthorization, "only the caller may select the trump suit")
	}
	if !suit.Valid() {
		return Result{}, newError(KindRule, "invalid suit %d", int(suit))
	}

	s := suit
	t.TrumpSuit = &s
	e.touch()
	return Result{Kind: TrumpSelected, PlayerID: playerID, Suit: &s, NextPlayerID: playerID}, nil
}

// SelectFriendCards 定约人指定 1~2 张朋友牌。
// 持有者在打出该牌之前身份保密，不改变阵营。
func (e *Engine) SelectFriendCards(playerID string, cards []table.Card) (Result, error) {
	t := e.Table
	caller, ok := t.Player(playerID)
	if !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	if t.Phase != table.PhaseFriendSelection {
		return Result{}, newError(KindPhase, "friend cards can only be chosen during friend selection")
	}
	if playerID != t.CallerID {
		return Result{}, newError(KindAuthorization, "only the caller may select friend cards")
	}
	if t.TrumpSuit == nil {
		return Result{}, newError(KindRule, "select a trump suit first")
	}
	if err := e.validateFriendCards(caller, cards); err != nil {
		return Result{}, err
	}

	t.FriendCards = append([]table.Card(nil), cards...)
	e.dealRemaining()
	t.CurrentTrick = &table.Trick{}
	t.LeadPlayerIndex = caller.Seat
	t.CurrentPlayerIndex = caller.Seat
	t.Phase = table.PhaseTrickPlaying
	e.touch()

	return Result{
		Kind:         PlayStarted,
		PlayerID:     playerID,
		Cards:        append([]table.Card(nil), t.FriendCards...),
		NextPlayerID: playerID,
	}, nil
}

func (e *Engine) validateFriendCards(caller *table.Player, cards []table.Card) error {
	if len(cards) < MinFriendCards || len(cards) > MaxFriendCards {
		return newError(KindRule, "select %d or %d friend cards, got %d", MinFriendCards, MaxFriendCards, len(cards))
	}
	for i, c := range cards {
		if !c.Valid() {
			return newError(KindRule, "invalid friend card %v", c)
		}
		if table.Contains(cards[:i], c) {
			return newError(KindRule, "friend card %v chosen twice", c)
		}
		if table.Contains(caller.Hand, c) {
			return newError(KindRule, "friend card %v is already in your hand", c)
		}
		if e.Rules.ForbidTopCardFriend && c.IsTopCard() {
			return newError(KindRule, "%v cannot be a friend card", c)
		}
	}
	return nil
}
