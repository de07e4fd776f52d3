package session

import (
	"context"
	"time"
)

// Repo 座位绑定：playerID → matchID，带 TTL
type Repo interface {
	// Bind 记录玩家所在的对局；重复 Bind 会刷新 TTL
	Bind(ctx context.Context, playerID, matchID string, ttl time.Duration) error
	// Lookup 返回玩家所在对局；没有绑定时返回 ""
	Lookup(ctx context.Context, playerID string) (string, error)
	// Unbind 解除单个玩家的绑定
	Unbind(ctx context.Context, playerID string) error
	// Count 对局内仍有绑定的玩家数
	Count(ctx context.Context, matchID string) (int64, error)
	// Drop 清掉整个对局的所有绑定（对局被回收时）
	Drop(ctx context.Context, matchID string) error
}
