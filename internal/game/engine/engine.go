package engine

import (
	"slices"
	"strings"
	"time"

	"FriendCall/internal/game/dealer"
	"FriendCall/internal/game/table"

	"github.com/google/uuid"
)

// ---------------------
//        RULES
// ---------------------

// Rules 可配置的规则分支
type Rules struct {
	// 五人全 pass 且无人叫分时重新发牌；关闭时最后一人不得 pass
	RedealOnAllPass bool
	// 禁止把黑桃 Q 选作朋友牌
	ForbidTopCardFriend bool
}

func DefaultRules() Rules {
	return Rules{RedealOnAllPass: true}
}

// ---------------------
//       ENGINE
// ---------------------

// Engine 是一局对局的规则引擎：同步、无 I/O、单写者。
// 并发访问由调用方串行化（见 manager 的 action loop）。
type Engine struct {
	Table  *table.Table
	Dealer *dealer.Dealer
	Rules  Rules

	now   func() time.Time
	newID func() string
}

func NewEngine(matchID string, d *dealer.Dealer, rules Rules) *Engine {
	if d == nil {
		d = dealer.NewDealer(time.Now().UnixNano())
	}
	e := &Engine{
		Dealer: d,
		Rules:  rules,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	e.Table = table.New(matchID, e.now())
	return e
}

// SetClock 替换时钟（测试用）
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) touch() {
	e.Touch(e.now())
}

// Touch 记录一次活动（聊天等不改变牌局的操作也算）
func (e *Engine) Touch(now time.Time) {
	e.Table.LastActivity = now
}

// LastActivity 最近一次成功操作的时间
func (e *Engine) LastActivity() time.Time {
	return e.Table.LastActivity
}

// Phase 当前阶段
func (e *Engine) Phase() table.Phase {
	return e.Table.Phase
}

// PlayerIDs 按座位顺序返回所有玩家
func (e *Engine) PlayerIDs() []string {
	return e.Table.PlayerIDs()
}

// --------------------------
//        入座与开局
// --------------------------

// AddPlayer 入座；第五人入座时自动发牌并进入叫分
func (e *Engine) AddPlayer(name string) (Result, error) {
	t := e.Table
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, newError(KindRule, "player name must not be empty")
	}
	if t.Phase != table.PhaseWaiting {
		return Result{}, newError(KindPhase, "game has already started")
	}
	if t.IsFull() {
		return Result{}, newError(KindPhase, "game is full")
	}

	p := &table.Player{
		ID:        e.newID(),
		Name:      name,
		Team:      table.TeamUnassigned,
		Connected: true,
	}
	t.SeatPlayer(p)
	e.touch()

	if !t.IsFull() {
		return Result{Kind: PlayerJoined, PlayerID: p.ID}, nil
	}

	res, err := e.StartDeal()
	if err != nil {
		// 满员且处于等待阶段时不会失败
		panic("engine: start deal on a full table: " + err.Error())
	}
	res.PlayerID = p.ID
	return res, nil
}

// StartDeal 洗牌、每人发 4 张、进入叫分，座位 0 先叫
func (e *Engine) StartDeal() (Result, error) {
	t := e.Table
	if t.Phase != table.PhaseWaiting {
		return Result{}, newError(KindPhase, "cards have already been dealt")
	}
	if !t.IsFull() {
		return Result{}, newError(KindRule, "need %d players to deal, have %d", table.TableSize, len(t.Players))
	}

	e.dealInitial()
	t.Phase = table.PhaseBidding
	t.CurrentPlayerIndex = 0
	t.LeadPlayerIndex = 0
	e.touch()

	return Result{Kind: GameStarted, NextPlayerID: t.CurrentPlayer().ID}, nil
}

// RemovePlayer 开局前离开直接让出座位；开局后只标记掉线
func (e *Engine) RemovePlayer(playerID string) (Result, error) {
	t := e.Table
	p, ok := t.Player(playerID)
	if !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	if t.Phase == table.PhaseWaiting {
		t.Unseat(playerID)
		e.touch()
		return Result{Kind: PlayerLeft, PlayerID: playerID}, nil
	}
	p.Connected = false
	e.touch()
	off := false
	return Result{Kind: PresenceChanged, PlayerID: playerID, Connected: &off}, nil
}

// SetConnected 更新在线状态，任何阶段均可
func (e *Engine) SetConnected(playerID string, connected bool) (Result, error) {
	p, ok := e.Table.Player(playerID)
	if !ok {
		return Result{}, newError(KindNotFound, "player %s not found", playerID)
	}
	p.Connected = connected
	e.touch()
	c := connected
	return Result{Kind: PresenceChanged, PlayerID: playerID, Connected: &c}, nil
}

// IsEmpty 没有任何在座或在线玩家
func (e *Engine) IsEmpty() bool {
	for _, p := range e.Table.Players {
		if p.Connected {
			return false
		}
	}
	return true
}

// --------------------------
//           发牌
// --------------------------

func (e *Engine) dealInitial() {
	t := e.Table
	e.Dealer.NewDeck()
	hands := e.Dealer.Deal(len(t.Players), table.InitialHand)
	for i, p := range t.Players {
		p.Hand = hands[i]
	}
	e.syncDeck()
}

func (e *Engine) dealRemaining() {
	t := e.Table
	hands := e.Dealer.Deal(len(t.Players), table.FullHand-table.InitialHand)
	for i, p := range t.Players {
		p.Hand = append(p.Hand, hands[i]...)
		sortHand(p.Hand)
	}
	e.syncDeck()
}

func (e *Engine) syncDeck() {
	e.Table.Deck = append([]table.Card(nil), e.Dealer.Remaining()...)
}

func sortHand(h []table.Card) {
	slices.SortFunc(h, func(a, b table.Card) int {
		if a.Suit != b.Suit {
			return int(a.Suit) - int(b.Suit)
		}
		return int(a.Rank) - int(b.Rank)
	})
}
