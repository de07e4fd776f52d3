package engine

import (
	"fmt"
	"strings"
	"testing"

	"FriendCall/internal/game/dealer"
	"FriendCall/internal/game/table"

	"github.com/stretchr/testify/require"
)

// card("AH") / card("10S")
func card(s string) table.Card {
	suitCh := s[len(s)-1:]
	var suit table.Suit
	switch strings.ToUpper(suitCh) {
	case "H":
		suit = table.Hearts
	case "D":
		suit = table.Diamonds
	case "C":
		suit = table.Clubs
	case "S":
		suit = table.Spades
	default:
		panic("bad suit in " + s)
	}
	rank, err := table.ParseRank(s[:len(s)-1])
	if err != nil {
		panic(err)
	}
	return table.Card{Suit: suit, Rank: rank}
}

func cards(ss ...string) []table.Card {
	out := make([]table.Card, 0, len(ss))
	for _, s := range ss {
		out = append(out, card(s))
	}
	return out
}

// stack 按发牌顺序拼出整副牌：先五个座位的前 4 张，再五个座位的后 4 张
func stack(initial, remaining [5][]table.Card) []table.Card {
	deck := make([]table.Card, 0, 40)
	for _, h := range initial {
		deck = append(deck, h...)
	}
	for _, h := range remaining {
		deck = append(deck, h...)
	}
	if len(deck) != 40 {
		panic(fmt.Sprintf("stacked deck has %d cards", len(deck)))
	}
	seen := map[table.Card]bool{}
	for _, c := range deck {
		if seen[c] {
			panic("duplicate card " + c.String())
		}
		seen[c] = true
	}
	return deck
}

// 定约人 seat0 拿 8 张将牌（黑桃），A♥ 在 seat2
func sweepDeck() []table.Card {
	return stack(
		[5][]table.Card{
			cards("AS", "KS", "QS", "JS"),
			cards("6S", "5S", "6H", "5H"),
			cards("AH", "KH", "QH", "JH"),
			cards("10D", "9D", "8D", "7D"),
			cards("QC", "JC", "10C", "9C"),
		},
		[5][]table.Card{
			cards("10S", "9S", "8S", "7S"),
			cards("AD", "KD", "QD", "JD"),
			cards("10H", "9H", "8H", "7H"),
			cards("6D", "5D", "AC", "KC"),
			cards("8C", "7C", "6C", "5C"),
		},
	)
}

// seat2 先以对手身份赢下第一墩，第二墩打出朋友牌 A♥
func revealDeck() []table.Card {
	return stack(
		[5][]table.Card{
			cards("5H", "5D", "5C", "6C"),
			cards("6H", "6D", "7C", "8C"),
			cards("AH", "KH", "7D", "9C"),
			cards("7H", "8H", "10D", "QC"),
			cards("9H", "10H", "JH", "QH"),
		},
		[5][]table.Card{
			cards("AS", "KS", "QS", "JS"),
			cards("10S", "9S", "8S", "7S"),
			cards("10C", "JC", "8D", "9D"),
			cards("6S", "5S", "JD", "KC"),
			cards("QD", "KD", "AD", "AC"),
		},
	)
}

// 定约人只有 0 分小牌且没有将牌，一墩也赢不了
func hopelessDeck() []table.Card {
	return stack(
		[5][]table.Card{
			cards("5H", "6H", "7H", "8H"),
			cards("9H", "10H", "JH", "QH"),
			cards("JD", "QD", "KD", "AD"),
			cards("9S", "10S", "JS", "QS"),
			cards("7C", "8C", "9C", "10C"),
		},
		[5][]table.Card{
			cards("5D", "6D", "7D", "8D"),
			cards("KH", "AH", "9D", "10D"),
			cards("5S", "6S", "7S", "8S"),
			cards("KS", "AS", "5C", "6C"),
			cards("JC", "QC", "KC", "AC"),
		},
	)
}

// seatPlayers 建桌并坐满五人，返回按座位排列的 id
func seatPlayers(t *testing.T, d *dealer.Dealer, rules Rules) (*Engine, []string) {
	t.Helper()
	e := NewEngine("match-1", d, rules)
	ids := make([]string, 0, table.TableSize)
	for i := 0; i < table.TableSize; i++ {
		res, err := e.AddPlayer(fmt.Sprintf("player%d", i+1))
		require.NoError(t, err)
		ids = append(ids, res.PlayerID)
	}
	return e, ids
}

// toPlay 叫分结束（seat0 叫 150，其余 pass）、选将与朋友牌
func toPlay(t *testing.T, deck []table.Card, trump table.Suit, friends ...table.Card) (*Engine, []string) {
	t.Helper()
	e, ids := seatPlayers(t, dealer.NewStackedDealer(1, deck), DefaultRules())
	_, err := e.ProcessBid(ids[0], bidOf(150))
	require.NoError(t, err)
	for _, id := range ids[1:] {
		_, err := e.ProcessBid(id, nil)
		require.NoError(t, err)
	}
	_, err = e.SelectTrump(ids[0], trump)
	require.NoError(t, err)
	_, err = e.SelectFriendCards(ids[0], friends)
	require.NoError(t, err)
	return e, ids
}

func bidOf(v int) *int { return &v }

// firstLegal 当前玩家第一张合法的牌（手牌已排序）
func firstLegal(t *testing.T, e *Engine) (string, table.Card) {
	t.Helper()
	cur := e.Table.CurrentPlayer()
	hand, err := e.Hand(cur.ID)
	require.NoError(t, err)
	require.NotEmpty(t, hand)
	if lead, ok := e.Table.CurrentTrick.LeadSuit(); ok && table.HasSuit(hand, lead) {
		for _, c := range hand {
			if c.Suit == lead {
				return cur.ID, c
			}
		}
	}
	return cur.ID, hand[0]
}

// playOut 用 firstLegal 打完整局，每一步后检查不变量
func playOut(t *testing.T, e *Engine) Result {
	t.Helper()
	var last Result
	for e.Table.Phase == table.PhaseTrickPlaying {
		id, c := firstLegal(t, e)
		res, err := e.PlayCard(id, c)
		require.NoError(t, err)
		checkInvariants(t, e)
		last = res
	}
	return last
}

func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	tb := e.Table
	require.LessOrEqual(t, len(tb.Players), table.TableSize)
	require.LessOrEqual(t, len(tb.CompletedTricks), table.TricksPerGame)

	if tb.Phase != table.PhaseWaiting {
		all := tb.AllCards()
		require.Len(t, all, 40, "every card must be somewhere")
		seen := map[table.Card]bool{}
		for _, c := range all {
			require.False(t, seen[c], "card %v appears twice", c)
			seen[c] = true
		}
	}

	sum := 0
	for _, tr := range tb.CompletedTricks {
		sum += tr.Points()
	}
	require.Equal(t, sum, tb.CallerTeamPoints+tb.OpponentTeamPoints, "team points must cover all archived tricks")

	if tb.Phase != table.PhaseWaiting && tb.Phase != table.PhaseBidding {
		callers := 0
		for _, p := range tb.Players {
			if p.IsCaller {
				callers++
			}
		}
		require.Equal(t, 1, callers)
	}
	if tb.Phase == table.PhaseBidding {
		require.False(t, tb.CurrentPlayer().HasPassed)
	}
	if tb.Phase == table.PhaseTrickPlaying {
		require.NotEmpty(t, tb.CurrentPlayer().Hand)
	}
	require.Equal(t, tb.Phase == table.PhaseGameOver, len(tb.CompletedTricks) == table.TricksPerGame)
}
