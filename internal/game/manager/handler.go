package manager

import (
	"context"
	"errors"
	"net/http"

	"FriendCall/internal/game/engine"
	"FriendCall/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	mgr *GameManager
}

func NewHandler(mgr *GameManager) *Handler {
	return &Handler{mgr: mgr}
}

// Register 挂载路由；seat 是座位令牌中间件
func (h *Handler) Register(r gin.IRouter, seat gin.HandlerFunc) {
	r.POST("/games", h.Create)
	r.POST("/games/:id/join", h.Join)
	r.GET("/games/:id", h.Get)

	g := r.Group("/games/:id", seat)
	{
		g.GET("/hand", h.Hand)
		g.POST("/bid", h.Bid)
		g.POST("/trump", h.Trump)
		g.POST("/friends", h.Friends)
		g.POST("/play", h.Play)
		g.POST("/leave", h.Leave)
	}
}

// statusOf 引擎错误种类 → HTTP 状态码
func statusOf(err error) int {
	var ee *engine.Error
	switch {
	case errors.As(err, &ee):
		switch ee.Kind {
		case engine.KindPhase, engine.KindTurn:
			return http.StatusConflict
		case engine.KindRule:
			return http.StatusUnprocessableEntity
		case engine.KindAuthorization:
			return http.StatusForbidden
		case engine.KindNotFound:
			return http.StatusNotFound
		}
	case errors.Is(err, ErrMatchClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

// POST /games
func (h *Handler) Create(c *gin.Context) {
	id, err := h.mgr.CreateGame()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"matchId": id})
}

// POST /games/:id/join  body: {name}
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.mgr.Join(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /games/:id
func (h *Handler) Get(c *gin.Context) {
	snap, err := h.mgr.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /games/:id/hand
func (h *Handler) Hand(c *gin.Context) {
	hand, err := h.mgr.Hand(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": hand})
}

// POST /games/:id/bid  body: {bid} / {bid: null}
func (h *Handler) Bid(c *gin.Context) {
	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c)(h.mgr.Bid(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey), req.Bid))
}

// POST /games/:id/trump  body: {suit}
func (h *Handler) Trump(c *gin.Context) {
	var req TrumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c)(h.mgr.SelectTrump(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey), *req.Suit))
}

// POST /games/:id/friends  body: {cards}
func (h *Handler) Friends(c *gin.Context) {
	var req FriendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c)(h.mgr.SelectFriends(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey), req.Cards))
}

// POST /games/:id/play  body: {card}
func (h *Handler) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c)(h.mgr.Play(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey), *req.Card))
}

// POST /games/:id/leave
func (h *Handler) Leave(c *gin.Context) {
	h.respond(c)(h.mgr.Leave(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerKey)))
}

func (h *Handler) respond(c *gin.Context) func(engine.Result, error) {
	return func(res engine.Result, err error) {
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
