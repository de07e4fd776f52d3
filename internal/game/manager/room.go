package manager

import (
	"sync"
	"time"

	"FriendCall/internal/game/engine"
)

// ---------------------
//   ACTION DEFINITION
// ---------------------

// action 在房间协程里对引擎执行一次操作。
// reply 为 nil 时是 fire-and-forget（WebSocket），错误私发给 playerID。
type action struct {
	playerID string
	do       func(e *engine.Engine) (engine.Result, error)
	reply    chan outcome
}

type outcome struct {
	res engine.Result
	err error
}

// ---------------------
//        ROOM
// ---------------------

// room 一局对局：引擎只在 loop 协程里被访问
type room struct {
	id         string
	eng        *engine.Engine
	actionChan chan action
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once

	// 给 janitor 读的状态副本
	mu           sync.Mutex
	lastActivity time.Time
	seated       int
}

func newRoom(id string, eng *engine.Engine, buffer int) *room {
	return &room{
		id:           id,
		eng:          eng,
		actionChan:   make(chan action, buffer),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		lastActivity: eng.LastActivity(),
	}
}

// 动作循环：串行处理本局所有操作
func (r *room) actionLoop(m *GameManager) {
	defer close(r.done)
	for {
		select {
		case a := <-r.actionChan:
			r.handleAction(m, a)
		case <-r.quit:
			return
		}
	}
}

func (r *room) handleAction(m *GameManager, a action) {
	res, err := a.do(r.eng)
	if err != nil {
		if a.reply == nil {
			m.sendError(r.id, a.playerID, err)
		}
	} else if res.Kind != "" {
		m.publish(r, res)
	}

	r.mu.Lock()
	r.lastActivity = r.eng.LastActivity()
	r.seated = len(r.eng.Table.Players)
	r.mu.Unlock()

	if a.reply != nil {
		a.reply <- outcome{res: res, err: err}
	}
}

// enqueue 非阻塞入队；队列满返回 false
func (r *room) enqueue(a action) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.actionChan <- a:
		return true
	default:
		return false
	}
}

func (r *room) stop() {
	r.closeOnce.Do(func() { close(r.quit) })
}

func (r *room) idle() (time.Time, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity, r.seated
}
