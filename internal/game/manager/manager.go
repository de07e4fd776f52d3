package manager

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"FriendCall/internal/auth"
	"FriendCall/internal/game/dealer"
	"FriendCall/internal/game/engine"
	"FriendCall/internal/game/table"
	"FriendCall/internal/session"
	"FriendCall/internal/utils"
	"FriendCall/internal/websocket"
)

const (
	matchIDLength  = 6
	matchIDRetries = 16
)

// Options 管理器参数；零值字段用默认值
type Options struct {
	Rules        engine.Rules
	Seed         int64 // 0 = 按时间随机
	ActionBuffer int
	Retention    time.Duration // 超过该时长无操作的对局被回收
	EmptyGrace   time.Duration // 没人入座的对局最多保留多久
	SeatTTL      time.Duration
	// NewDealer 测试注入固定牌序
	NewDealer func() *dealer.Dealer
}

func (o *Options) setDefaults() {
	if o.ActionBuffer <= 0 {
		o.ActionBuffer = 32
	}
	if o.Retention <= 0 {
		o.Retention = 30 * time.Minute
	}
	if o.EmptyGrace <= 0 {
		o.EmptyGrace = time.Minute
	}
}

// GameManager 管理所有对局
type GameManager struct {
	mu     sync.RWMutex
	rooms  map[string]*room // matchID → room
	hub    websocket.HubInterface
	seats  session.Repo
	tokens *auth.Issuer
	opts   Options
	seq    int64
	now    func() time.Time
}

func NewGameManager(hub websocket.HubInterface, seats session.Repo, tokens *auth.Issuer, opts Options) *GameManager {
	opts.setDefaults()
	return &GameManager{
		rooms:  make(map[string]*room),
		hub:    hub,
		seats:  seats,
		tokens: tokens,
		opts:   opts,
		now:    time.Now,
	}
}

// --------------------------
//         对局注册表
// --------------------------

// CreateGame 新建一局空桌并启动它的 action loop
func (m *GameManager) CreateGame() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := ""
	for i := 0; i < matchIDRetries; i++ {
		candidate := newMatchID()
		if _, ok := m.rooms[candidate]; !ok {
			id = candidate
			break
		}
	}
	if id == "" {
		return "", fmt.Errorf("could not allocate a match id after %d tries", matchIDRetries)
	}

	eng := engine.NewEngine(id, m.newDealer(), m.opts.Rules)
	eng.SetClock(m.now)
	eng.Touch(m.now())

	r := newRoom(id, eng, m.opts.ActionBuffer)
	m.rooms[id] = r
	go r.actionLoop(m)

	utils.Log.Info("match created", "match", id, "rooms", len(m.rooms))
	return id, nil
}

func newMatchID() string {
	b := make([]byte, matchIDLength)
	for i := range b {
		b[i] = byte('A' + rand.Intn(26))
	}
	return string(b)
}

func (m *GameManager) newDealer() *dealer.Dealer {
	if m.opts.NewDealer != nil {
		return m.opts.NewDealer()
	}
	m.seq++
	if m.opts.Seed != 0 {
		return dealer.NewDealer(m.opts.Seed + m.seq)
	}
	return dealer.NewDealer(time.Now().UnixNano() + m.seq)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (m *GameManager) lookup(matchID string) (*room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[normalizeID(matchID)]
	return r, ok
}

// Count 当前对局数
func (m *GameManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// --------------------------
//        同步操作入口 (HTTP)
// --------------------------

// submit 把操作交给房间协程并等待结果
func (m *GameManager) submit(ctx context.Context, matchID, playerID string, do func(e *engine.Engine) (engine.Result, error)) (engine.Result, error) {
	r, ok := m.lookup(matchID)
	if !ok {
		return engine.Result{}, ErrMatchNotFound
	}

	a := action{playerID: playerID, do: do, reply: make(chan outcome, 1)}
	select {
	case r.actionChan <- a:
	case <-r.quit:
		return engine.Result{}, ErrMatchClosed
	case <-ctx.Done():
		return engine.Result{}, ctx.Err()
	}

	select {
	case out := <-a.reply:
		return out.res, out.err
	case <-r.quit:
		return engine.Result{}, ErrMatchClosed
	case <-ctx.Done():
		return engine.Result{}, ctx.Err()
	}
}

// Join 入座，绑定座位并签发令牌；第五人入座时自动开局
func (m *GameManager) Join(ctx context.Context, matchID, name string) (JoinResponse, error) {
	matchID = normalizeID(matchID)
	res, err := m.submit(ctx, matchID, "", func(e *engine.Engine) (engine.Result, error) {
		return e.AddPlayer(name)
	})
	if err != nil {
		return JoinResponse{}, err
	}

	if err := m.seats.Bind(ctx, res.PlayerID, matchID, m.opts.SeatTTL); err != nil {
		return JoinResponse{}, fmt.Errorf("join %s: %w", matchID, err)
	}
	token, err := m.tokens.Issue(matchID, res.PlayerID)
	if err != nil {
		return JoinResponse{}, fmt.Errorf("join %s: %w", matchID, err)
	}

	utils.Log.Info("player joined", "match", matchID, "player", res.PlayerID, "started", res.Kind == engine.GameStarted)
	return JoinResponse{
		MatchID:  matchID,
		PlayerID: res.PlayerID,
		Token:    token,
		Started:  res.Kind == engine.GameStarted,
	}, nil
}

func (m *GameManager) Bid(ctx context.Context, matchID, playerID string, bid *int) (engine.Result, error) {
	return m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		return e.ProcessBid(playerID, bid)
	})
}

func (m *GameManager) SelectTrump(ctx context.Context, matchID, playerID string, suit table.Suit) (engine.Result, error) {
	return m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		return e.SelectTrump(playerID, suit)
	})
}

func (m *GameManager) SelectFriends(ctx context.Context, matchID, playerID string, cards []table.Card) (engine.Result, error) {
	return m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		return e.SelectFriendCards(playerID, cards)
	})
}

func (m *GameManager) Play(ctx context.Context, matchID, playerID string, card table.Card) (engine.Result, error) {
	return m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		return e.PlayCard(playerID, card)
	})
}

// Hand 玩家自己的手牌
func (m *GameManager) Hand(ctx context.Context, matchID, playerID string) ([]table.Card, error) {
	var hand []table.Card
	_, err := m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		h, err := e.Hand(playerID)
		hand = h
		return engine.Result{}, err
	})
	if err != nil {
		return nil, err
	}
	return hand, nil
}

// Snapshot 公共视图，不含任何手牌
func (m *GameManager) Snapshot(ctx context.Context, matchID string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	_, err := m.submit(ctx, matchID, "", func(e *engine.Engine) (engine.Result, error) {
		snap = e.Snapshot()
		return engine.Result{}, nil
	})
	return snap, err
}

// Leave 开局前离开让出座位；开局后只标记掉线。
// 桌上没人（或终局后没人在线）时立即回收对局。
func (m *GameManager) Leave(ctx context.Context, matchID, playerID string) (engine.Result, error) {
	matchID = normalizeID(matchID)
	closeNow := false
	res, err := m.submit(ctx, matchID, playerID, func(e *engine.Engine) (engine.Result, error) {
		res, err := e.RemovePlayer(playerID)
		if err == nil {
			closeNow = len(e.Table.Players) == 0 || (e.Phase() == table.PhaseGameOver && e.IsEmpty())
		}
		return res, err
	})
	if err != nil {
		return res, err
	}

	if err := m.seats.Unbind(ctx, playerID); err != nil {
		utils.Log.Warn("unbind seat failed", "match", matchID, "player", playerID, "err", err)
	}
	if closeNow {
		m.discard(ctx, matchID, "empty")
	}
	return res, nil
}

// --------------------------
//     异步入口 (WebSocket)
// --------------------------

// HandlePlayerMessage 统一入口（来自 Hub.OnIncoming，运行在 Hub 协程里，不能阻塞）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	r, ok := m.lookup(msg.Match)
	if !ok {
		go m.sendError(msg.Match, msg.From, ErrMatchNotFound)
		return
	}

	a := action{playerID: msg.From, do: m.decode(r, msg)}
	if !r.enqueue(a) {
		utils.Log.Warn("dropping player message", "match", r.id, "player", msg.From, "event", msg.Event)
		go m.sendError(r.id, msg.From, ErrBusy)
	}
}

// HandlePresence 来自 Hub.OnPresence：连上时补发手牌，断开时标记掉线
func (m *GameManager) HandlePresence(playerID, matchID string, connected bool) {
	r, ok := m.lookup(matchID)
	if !ok {
		return
	}
	a := action{
		playerID: playerID,
		do: func(e *engine.Engine) (engine.Result, error) {
			res, err := e.SetConnected(playerID, connected)
			if err == nil && connected {
				m.sendHand(r, playerID)
			}
			return res, err
		},
	}
	if !connected {
		// 掉线的人收不到错误
		a.playerID = ""
	}
	if !r.enqueue(a) {
		utils.Log.Warn("dropping presence update", "match", r.id, "player", playerID, "connected", connected)
	}
}

// --------------------------
//           回收
// --------------------------

// CleanupInactive 回收超时或没人入座的对局，返回被回收的 id
func (m *GameManager) CleanupInactive(ctx context.Context) []string {
	now := m.now()

	m.mu.RLock()
	var stale []string
	for id, r := range m.rooms {
		last, seated := r.idle()
		idle := now.Sub(last)
		if idle > m.opts.Retention || (seated == 0 && idle > m.opts.EmptyGrace) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.discard(ctx, id, "inactive")
	}
	return stale
}

// RunJanitor 定时回收，ctx 结束时返回
func (m *GameManager) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := m.CleanupInactive(ctx); len(removed) > 0 {
				utils.Log.Info("janitor removed matches", "count", len(removed), "matches", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *GameManager) discard(ctx context.Context, matchID, reason string) {
	m.mu.Lock()
	r, ok := m.rooms[matchID]
	if ok {
		delete(m.rooms, matchID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	r.stop()
	if err := m.seats.Drop(ctx, matchID); err != nil {
		utils.Log.Warn("drop seats failed", "match", matchID, "err", err)
	}
	utils.Log.Info("match discarded", "match", matchID, "reason", reason)
}

// Close 停掉所有对局
func (m *GameManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.stop()
		delete(m.rooms, id)
	}
}
