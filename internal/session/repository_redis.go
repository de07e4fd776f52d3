package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	kv : fc:seat:{playerID}   -> matchID（带 TTL）
//	set: fc:match:{matchID}   -> Set(playerID,...)，TTL 跟随最近一次 Bind
func seatKey(playerID string) string {
	return fmt.Sprintf("fc:seat:%s", playerID)
}
func matchKey(matchID string) string {
	return fmt.Sprintf("fc:match:%s", matchID)
}

func (r *redisRepo) Bind(ctx context.Context, playerID, matchID string, ttl time.Duration) error {
	old, err := r.rdb.Get(ctx, seatKey(playerID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("bind %s: %w", playerID, err)
	}

	p := r.rdb.TxPipeline()
	if old != "" && old != matchID {
		p.SRem(ctx, matchKey(old), playerID)
	}
	p.Set(ctx, seatKey(playerID), matchID, ttl)
	p.SAdd(ctx, matchKey(matchID), playerID)
	if ttl > 0 {
		p.Expire(ctx, matchKey(matchID), ttl)
	}
	if _, err := p.Exec(ctx); err != nil {
		return fmt.Errorf("bind %s: %w", playerID, err)
	}
	return nil
}

func (r *redisRepo) Lookup(ctx context.Context, playerID string) (string, error) {
	val, err := r.rdb.Get(ctx, seatKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", playerID, err)
	}
	return val, nil
}

// Lua：删 seat、从对局集合移除；集合空则删除集合
// KEYS[1] = seatKey, ARGV[1] = playerID, ARGV[2] = match key 前缀
const unbindScript = `
	local matchID = redis.call("GET", KEYS[1])
	redis.call("DEL", KEYS[1])
	if matchID then
		local set = ARGV[2] .. matchID
		redis.call("SREM", set, ARGV[1])
		if redis.call("SCARD", set) == 0 then
			redis.call("DEL", set)
		end
	end
	return 1
`

func (r *redisRepo) Unbind(ctx context.Context, playerID string) error {
	if err := r.rdb.Eval(ctx, unbindScript, []string{seatKey(playerID)}, playerID, matchKey("")).Err(); err != nil {
		return fmt.Errorf("unbind %s: %w", playerID, err)
	}
	return nil
}

// Lua：统计仍然有效的座位，顺手清掉已过期的成员
// KEYS[1] = matchKey, ARGV[1] = matchID, ARGV[2] = seat key 前缀
const countScript = `
	local n = 0
	for _, id in ipairs(redis.call("SMEMBERS", KEYS[1])) do
		if redis.call("GET", ARGV[2] .. id) == ARGV[1] then
			n = n + 1
		else
			redis.call("SREM", KEYS[1], id)
		end
	end
	if n == 0 then
		redis.call("DEL", KEYS[1])
	end
	return n
`

func (r *redisRepo) Count(ctx context.Context, matchID string) (int64, error) {
	n, err := r.rdb.Eval(ctx, countScript, []string{matchKey(matchID)}, matchID, seatKey("")).Int64()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", matchID, err)
	}
	return n, nil
}

func (r *redisRepo) Drop(ctx context.Context, matchID string) error {
	ids, err := r.rdb.SMembers(ctx, matchKey(matchID)).Result()
	if err != nil {
		return fmt.Errorf("drop %s: %w", matchID, err)
	}
	p := r.rdb.Pipeline()
	for _, id := range ids {
		p.Del(ctx, seatKey(id))
	}
	p.Del(ctx, matchKey(matchID))
	if _, err := p.Exec(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", matchID, err)
	}
	return nil
}
