package middleware

import (
	"net/http"
	"strings"

	"FriendCall/internal/auth"
	"FriendCall/internal/session"

	"github.com/gin-gonic/gin"
)

// context keys
const (
	PlayerKey = "player"
	MatchKey  = "match"
)

// SeatAuth 校验座位令牌（Authorization: Bearer <token> 或 ?token=），
// 向 context 注入 player / match。路由带 :id 时要求与令牌中的对局一致。
// seats 不为 nil 时还要求座位绑定仍然有效（离开或对局被回收后令牌作废）。
func SeatAuth(iss *auth.Issuer, seats session.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing seat token"})
			return
		}

		seat, err := iss.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if id := c.Param("id"); id != "" && !strings.EqualFold(id, seat.MatchID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "seat token belongs to another game"})
			return
		}

		if seats != nil {
			matchID, err := seats.Lookup(c.Request.Context(), seat.PlayerID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if matchID != seat.MatchID {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "seat is no longer valid"})
				return
			}
		}

		c.Set(PlayerKey, seat.PlayerID)
		c.Set(MatchKey, seat.MatchID)
		c.Next()
	}
}

func bearer(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
