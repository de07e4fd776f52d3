package manager

import (
	"encoding/json"
	"errors"
	"fmt"

	"FriendCall/internal/game/engine"
	"FriendCall/internal/websocket"
)

// 结果 → 广播事件
var resultEvents = map[engine.Kind]string{
	engine.PlayerJoined:    websocket.EventPlayerJoined,
	engine.PlayerLeft:      websocket.EventPlayerLeft,
	engine.PresenceChanged: websocket.EventPresence,
	engine.GameStarted:     websocket.EventGameStarted,
	engine.BidAccepted:     websocket.EventBidPlaced,
	engine.BiddingComplete: websocket.EventBiddingDone,
	engine.Redeal:          websocket.EventRedeal,
	engine.TrumpSelected:   websocket.EventTrumpSelected,
	engine.PlayStarted:     websocket.EventPlayStarted,
	engine.CardPlayed:      websocket.EventCardPlayed,
	engine.TrickComplete:   websocket.EventTrickComplete,
	engine.GameComplete:    websocket.EventGameComplete,
}

// publish 在房间协程里调用：广播结果事件、最新快照，需要时私发手牌
func (m *GameManager) publish(r *room, res engine.Result) {
	ids := r.eng.PlayerIDs()
	payload := resultPayload{MatchID: r.id, Result: res}

	switch res.Kind {
	case engine.CardPlayed, engine.TrickComplete, engine.GameComplete:
		m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: websocket.EventCardPlayed, Data: payload})
		if res.Revealed != "" {
			m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
				Event: websocket.EventFriendRevealed,
				Data: map[string]any{
					"matchId":  r.id,
					"playerId": res.Revealed,
					"card":     res.Card,
				},
			})
		}
		if res.Kind != engine.CardPlayed {
			m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: resultEvents[res.Kind], Data: payload})
		}
		m.sendHand(r, res.PlayerID)

	case engine.GameStarted, engine.Redeal, engine.PlayStarted:
		m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: resultEvents[res.Kind], Data: payload})
		for _, id := range ids {
			m.sendHand(r, id)
		}

	default:
		ev, ok := resultEvents[res.Kind]
		if !ok {
			return
		}
		m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{Event: ev, Data: payload})
	}

	m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
		Event: websocket.EventGameState,
		Data:  r.eng.Snapshot(),
	})
}

// sendHand 手牌只发给本人
func (m *GameManager) sendHand(r *room, playerID string) {
	hand, err := r.eng.Hand(playerID)
	if err != nil {
		return
	}
	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{
		Event: websocket.EventHand,
		Data:  handPayload{MatchID: r.id, Cards: hand},
	})
}

func (m *GameManager) sendError(matchID, playerID string, err error) {
	if playerID == "" {
		return
	}
	p := errorPayload{MatchID: matchID, Error: err.Error()}
	var ee *engine.Error
	if errors.As(err, &ee) {
		p.Kind = ee.Kind.String()
	}
	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{Event: websocket.EventError, Data: p})
}

// decode 把客户端事件翻译成引擎操作；解析失败时返回一个只报错的操作
func (m *GameManager) decode(r *room, msg websocket.IncomingMessage) func(e *engine.Engine) (engine.Result, error) {
	from := msg.From
	reject := func(err error) func(e *engine.Engine) (engine.Result, error) {
		return func(*engine.Engine) (engine.Result, error) { return engine.Result{}, err }
	}

	switch msg.Event {
	case websocket.InBid:
		var req BidRequest
		if err := unmarshal(msg.Data, &req); err != nil {
			return reject(err)
		}
		return func(e *engine.Engine) (engine.Result, error) {
			return e.ProcessBid(from, req.Bid)
		}

	case websocket.InTrump:
		var req TrumpRequest
		if err := unmarshal(msg.Data, &req); err != nil {
			return reject(err)
		}
		if req.Suit == nil {
			return reject(errors.New("suit is required"))
		}
		return func(e *engine.Engine) (engine.Result, error) {
			return e.SelectTrump(from, *req.Suit)
		}

	case websocket.InFriends:
		var req FriendsRequest
		if err := unmarshal(msg.Data, &req); err != nil {
			return reject(err)
		}
		return func(e *engine.Engine) (engine.Result, error) {
			return e.SelectFriendCards(from, req.Cards)
		}

	case websocket.InPlay:
		var req PlayRequest
		if err := unmarshal(msg.Data, &req); err != nil {
			return reject(err)
		}
		if req.Card == nil {
			return reject(errors.New("card is required"))
		}
		return func(e *engine.Engine) (engine.Result, error) {
			return e.PlayCard(from, *req.Card)
		}

	case websocket.InHand:
		return func(e *engine.Engine) (engine.Result, error) {
			if _, err := e.Hand(from); err != nil {
				return engine.Result{}, err
			}
			m.sendHand(r, from)
			return engine.Result{}, nil
		}

	case websocket.InChat:
		var req ChatRequest
		if err := unmarshal(msg.Data, &req); err != nil {
			return reject(err)
		}
		return func(e *engine.Engine) (engine.Result, error) {
			if _, ok := e.Table.Player(from); !ok {
				return engine.Result{}, fmt.Errorf("chat: %w", engine.ErrNotFound)
			}
			e.Touch(m.now())
			// 桌内聊天广播
			m.hub.BroadcastToPlayers(e.PlayerIDs(), websocket.OutgoingMessage{
				Event: websocket.EventChat,
				Data:  chatPayload{MatchID: r.id, From: from, Text: req.Text},
			})
			return engine.Result{}, nil
		}
	}

	return reject(fmt.Errorf("unknown event %q", msg.Event))
}

func unmarshal(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	return nil
}
