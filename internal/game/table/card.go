package table

import (
	"fmt"
	"strings"
)

// Suit 花色
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitNames = []string{"HEARTS", "DIAMONDS", "CLUBS", "SPADES"}
var suitSymbols = []string{"♥", "♦", "♣", "♠"}

// Suits 按固定顺序列出所有花色
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) Valid() bool { return s >= Hearts && s <= Spades }

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	v, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSuit accepts the wire names (HEARTS…), case-insensitive.
func ParseSuit(name string) (Suit, error) {
	for i, n := range suitNames {
		if strings.EqualFold(n, name) {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

// Rank 点数，数值即比较顺序 (5 最小，A 最大)
type Rank int

const (
	Five Rank = iota
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = []string{"FIVE", "SIX", "SEVEN", "EIGHT", "NINE", "TEN", "JACK", "QUEEN", "KING", "ACE"}
var rankShort = []string{"5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Ranks 从小到大
var Ranks = []Rank{Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (r Rank) Valid() bool { return r >= Five && r <= Ace }

func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(rankNames[r]), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	v, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRank accepts either the wire name (QUEEN) or the short form (Q, 10).
func ParseRank(name string) (Rank, error) {
	for i := range rankNames {
		if strings.EqualFold(rankNames[i], name) || strings.EqualFold(rankShort[i], name) {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", name)
}

// Card 值类型，(suit, rank) 即身份
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) Valid() bool { return c.Suit.Valid() && c.Rank.Valid() }

// Points 计分：J=5 Q=10 K=15 A=20，黑桃 Q 为 60，数字牌 0
func (c Card) Points() int {
	switch c.Rank {
	case Jack:
		return 5
	case Queen:
		if c.Suit == Spades {
			return 60
		}
		return 10
	case King:
		return 15
	case Ace:
		return 20
	default:
		return 0
	}
}

// IsTopCard reports whether c is the Queen of Spades.
func (c Card) IsTopCard() bool { return c.Suit == Spades && c.Rank == Queen }

func (c Card) String() string {
	return fmtCard(c)
}

func fmtCard(c Card) string {
	rankStr := "?"
	if c.Rank.Valid() {
		rankStr = rankShort[c.Rank]
	}
	suitStr := "?"
	if c.Suit.Valid() {
		suitStr = suitSymbols[c.Suit]
	}
	return rankStr + suitStr
}

// IndexOf 按值查找
func IndexOf(cards []Card, target Card) int {
	for i, c := range cards {
		if c == target {
			return i
		}
	}
	return -1
}

func Contains(cards []Card, target Card) bool {
	return IndexOf(cards, target) >= 0
}

// HasSuit reports whether any card in cards is of suit s.
func HasSuit(cards []Card, s Suit) bool {
	for _, c := range cards {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// SumPoints 牌面总分
func SumPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}
