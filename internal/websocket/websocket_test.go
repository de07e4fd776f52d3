package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(hub *Hub, id string) *Client {
	return &Client{PlayerID: id, Send: make(chan OutgoingMessage, 1), Hub: hub}
}

func TestHubBroadcastToPlayers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := newClient(hub, "p1")
	c2 := newClient(hub, "p2")
	c3 := newClient(hub, "p3")

	hub.register <- c1
	hub.register <- c2
	hub.register <- c3

	msg := OutgoingMessage{
		Event: EventGameState,
		Data:  map[string]interface{}{"matchId": "ABCDEF"},
	}

	hub.BroadcastToPlayers([]string{"p1", "p2", "ghost"}, msg)

	time.Sleep(20 * time.Millisecond)

	m1 := <-c1.Send
	m2 := <-c2.Send

	assert.Equal(t, EventGameState, m1.Event)
	assert.Equal(t, EventGameState, m2.Event)

	select {
	case <-c3.Send:
		assert.Fail(t, "p3 was not addressed")
	default:
	}
}

func TestHubSendToPlayer(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := newClient(hub, "p1")
	c2 := newClient(hub, "p2")

	hub.register <- c1
	hub.register <- c2

	hub.SendToPlayer("p1", OutgoingMessage{Event: EventHand, Data: "hello p1"})

	time.Sleep(20 * time.Millisecond)

	received := <-c1.Send

	// ✅ 只有 p1 收到私有消息
	assert.Equal(t, EventHand, received.Event)
	assert.Equal(t, "hello p1", received.Data)

	select {
	case <-c2.Send:
		assert.Fail(t, "p2 should NOT receive anything")
	default:
		// success
	}
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	slow := newClient(hub, "slow")
	fast := &Client{PlayerID: "fast", Send: make(chan OutgoingMessage, 8), Hub: hub}
	hub.register <- slow
	hub.register <- fast

	for i := 0; i < 3; i++ {
		hub.BroadcastToPlayers([]string{"slow", "fast"}, OutgoingMessage{Event: EventChat, Data: i})
	}
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, slow.Send, 1, "extra messages are dropped for a full buffer")
	assert.Len(t, fast.Send, 3)
}

func TestHubRegisterUnregisterPresence(t *testing.T) {
	hub := NewHub()

	var mu sync.Mutex
	events := []string{}
	hub.OnPresence = func(id, match string, connected bool) {
		mu.Lock()
		defer mu.Unlock()
		if connected {
			events = append(events, "+"+id)
		} else {
			events = append(events, "-"+id)
		}
	}
	go hub.Run()
	defer hub.Close()

	c := newClient(hub, "p1")

	hub.register <- c
	time.Sleep(10 * time.Millisecond)

	_, ok := hub.ClientByID("p1")
	require.True(t, ok, "client should be registered")

	hub.unregister <- c
	// 第二次 unregister 不应重复 close
	hub.unregister <- c
	time.Sleep(10 * time.Millisecond)

	_, ok = hub.ClientByID("p1")
	assert.False(t, ok, "client should be removed after unregister")

	_, open := <-c.Send
	assert.False(t, open, "send channel closed on unregister")

	mu.Lock()
	assert.Equal(t, []string{"+p1", "-p1"}, events)
	mu.Unlock()
}

func TestHubReconnectReplacesOldClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	old := newClient(hub, "p1")
	hub.register <- old
	fresh := newClient(hub, "p1")
	hub.register <- fresh
	time.Sleep(10 * time.Millisecond)

	_, open := <-old.Send
	assert.False(t, open)

	// 旧连接的 unregister 不影响新连接
	hub.unregister <- old
	time.Sleep(10 * time.Millisecond)
	c, ok := hub.ClientByID("p1")
	require.True(t, ok)
	assert.Same(t, fresh, c)
}

func TestHubIncomingCallback(t *testing.T) {
	hub := NewHub()
	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }
	go hub.Run()
	defer hub.Close()

	hub.push(IncomingMessage{From: "p1", Event: InBid, Data: json.RawMessage(`{"bid":150}`)})

	select {
	case m := <-got:
		assert.Equal(t, "p1", m.From)
		assert.Equal(t, InBid, m.Event)
		assert.JSONEq(t, `{"bid":150}`, string(m.Data))
	case <-time.After(time.Second):
		t.Fatal("OnIncoming not called")
	}
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newClient(hub, "p1")
	hub.register <- c
	hub.Close()
	hub.Close()

	_, open := <-c.Send
	assert.False(t, open)

	// 关闭后的发送不阻塞
	done := make(chan struct{})
	go func() {
		hub.SendToPlayer("p1", OutgoingMessage{Event: EventChat})
		hub.BroadcastToPlayers([]string{"p1"}, OutgoingMessage{Event: EventChat})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send after close blocked")
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }
	go hub.Run()
	defer hub.Close()

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("player", c.Query("as"))
		c.Set("match", "ABCDEF")
	}, ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?as=p1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 客户端自报的 from 会被忽略
	require.NoError(t, conn.WriteJSON(map[string]any{"from": "someone-else", "event": InChat, "data": "hi"}))
	select {
	case m := <-got:
		assert.Equal(t, "p1", m.From)
		assert.Equal(t, "ABCDEF", m.Match)
		assert.Equal(t, InChat, m.Event)
	case <-time.After(time.Second):
		t.Fatal("message not forwarded")
	}

	require.Eventually(t, func() bool {
		_, ok := hub.ClientByID("p1")
		return ok
	}, time.Second, 10*time.Millisecond)

	hub.SendToPlayer("p1", OutgoingMessage{Event: EventHand, Data: []string{"Q♠"}})
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var out OutgoingMessage
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, EventHand, out.Event)
}

func TestServeWS_RequiresSeat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	r := gin.New()
	r.GET("/ws", ServeWS(hub))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}
