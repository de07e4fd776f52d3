package dealer

import (
	"math/rand"

	"FriendCall/internal/game/table"
)

// DeckSize 4 花色 x 10 点数
const DeckSize = 40

// Dealer 只负责洗牌与发牌（无规则判断）
type Dealer struct {
	deck    []table.Card
	rnd     *rand.Rand
	stacked [][]table.Card
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{
		deck: make([]table.Card, 0, DeckSize),
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// NewStackedDealer 按给定顺序发牌，不洗牌；每次 NewDeck 依次取下一副，
// 取完后回到随机洗牌。用于复盘与测试。
func NewStackedDealer(seed int64, decks ...[]table.Card) *Dealer {
	d := NewDealer(seed)
	for _, deck := range decks {
		d.stacked = append(d.stacked, append([]table.Card(nil), deck...))
	}
	return d
}

// NewDeck 初始化一副牌并洗牌
func (d *Dealer) NewDeck() {
	if len(d.stacked) > 0 {
		d.deck = d.stacked[0]
		d.stacked = d.stacked[1:]
		return
	}
	d.deck = FreshDeck()
	d.shuffle()
}

// FreshDeck 未洗的 40 张牌，按花色再按点数排列
func FreshDeck() []table.Card {
	deck := make([]table.Card, 0, DeckSize)
	for _, s := range table.Suits {
		for _, r := range table.Ranks {
			deck = append(deck, table.Card{Suit: s, Rank: r})
		}
	}
	return deck
}

func (d *Dealer) shuffle() {
	d.rnd.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

// Remaining 剩余未发的牌
func (d *Dealer) Remaining() []table.Card {
	return d.deck
}

// Deal 给每个座位连续发 n 张（座位 0 先拿走 n 张，再到座位 1 ...），
// 返回与 seats 等长的手牌切片。牌不够时只发剩余部分。
func (d *Dealer) Deal(seats, n int) [][]table.Card {
	out := make([][]table.Card, seats)
	for s := 0; s < seats; s++ {
		out[s] = make([]table.Card, 0, n)
		for i := 0; i < n && len(d.deck) > 0; i++ {
			out[s] = append(out[s], d.draw())
		}
	}
	return out
}

func (d *Dealer) draw() table.Card {
	c := d.deck[0]
	d.deck = d.deck[1:]
	return c
}
