package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// repoCase 同一套用例分别跑内存与 Redis 实现
type repoCase struct {
	name    string
	repo    Repo
	advance func(time.Duration)
}

func repos(t *testing.T) []repoCase {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return []repoCase{
		{"memory", newMemoryRepo(clock.now), clock.advance},
		{"redis", NewRedisRepo(rdb), mr.FastForward},
	}
}

func TestRepo_BindLookupUnbind(t *testing.T) {
	ctx := context.Background()
	for _, rc := range repos(t) {
		t.Run(rc.name, func(t *testing.T) {
			r := rc.repo

			got, err := r.Lookup(ctx, "p1")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, r.Bind(ctx, "p1", "ABCDEF", time.Hour))
			require.NoError(t, r.Bind(ctx, "p2", "ABCDEF", time.Hour))
			require.NoError(t, r.Bind(ctx, "p3", "QWERTY", time.Hour))

			got, err = r.Lookup(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "ABCDEF", got)

			n, err := r.Count(ctx, "ABCDEF")
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			require.NoError(t, r.Unbind(ctx, "p1"))
			require.NoError(t, r.Unbind(ctx, "p1"), "unbinding twice is a no-op")
			got, err = r.Lookup(ctx, "p1")
			require.NoError(t, err)
			assert.Empty(t, got)

			n, err = r.Count(ctx, "ABCDEF")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			n, err = r.Count(ctx, "QWERTY")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestRepo_RebindMovesPlayer(t *testing.T) {
	ctx := context.Background()
	for _, rc := range repos(t) {
		t.Run(rc.name, func(t *testing.T) {
			r := rc.repo
			require.NoError(t, r.Bind(ctx, "p1", "AAAAAA", time.Hour))
			require.NoError(t, r.Bind(ctx, "p1", "BBBBBB", time.Hour))

			got, err := r.Lookup(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "BBBBBB", got)

			n, err := r.Count(ctx, "AAAAAA")
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestRepo_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	for _, rc := range repos(t) {
		t.Run(rc.name, func(t *testing.T) {
			r := rc.repo
			require.NoError(t, r.Bind(ctx, "short", "ABCDEF", time.Minute))
			require.NoError(t, r.Bind(ctx, "long", "ABCDEF", time.Hour))

			rc.advance(2 * time.Minute)

			got, err := r.Lookup(ctx, "short")
			require.NoError(t, err)
			assert.Empty(t, got, "seat expired")

			got, err = r.Lookup(ctx, "long")
			require.NoError(t, err)
			assert.Equal(t, "ABCDEF", got)

			n, err := r.Count(ctx, "ABCDEF")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestRepo_Drop(t *testing.T) {
	ctx := context.Background()
	for _, rc := range repos(t) {
		t.Run(rc.name, func(t *testing.T) {
			r := rc.repo
			for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
				require.NoError(t, r.Bind(ctx, id, "ABCDEF", 0))
			}
			require.NoError(t, r.Bind(ctx, "other", "ZZZZZZ", 0))

			require.NoError(t, r.Drop(ctx, "ABCDEF"))

			for _, id := range []string{"p1", "p5"} {
				got, err := r.Lookup(ctx, id)
				require.NoError(t, err)
				assert.Empty(t, got)
			}
			n, err := r.Count(ctx, "ABCDEF")
			require.NoError(t, err)
			assert.Zero(t, n)

			got, err := r.Lookup(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, "ZZZZZZ", got)

			require.NoError(t, r.Drop(ctx, "never-existed"))
		})
	}
}

// Redis 键的生命周期：集合空了会被删除
func TestRedisRepo_KeyLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisRepo(rdb)

	// 🟢 Step 1: 绑定 -> seat key 与 match 集合都存在
	require.NoError(t, r.Bind(ctx, "p1", "ABCDEF", time.Hour))
	assert.True(t, mr.Exists(seatKey("p1")))
	assert.True(t, mr.Exists(matchKey("ABCDEF")))
	val, _ := mr.Get(seatKey("p1"))
	assert.Equal(t, "ABCDEF", val)
	assert.Greater(t, mr.TTL(seatKey("p1")), time.Duration(0))

	members, err := mr.Members(matchKey("ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, members)

	// 🟢 Step 2: 解绑最后一人 -> 集合被删除
	require.NoError(t, r.Unbind(ctx, "p1"))
	assert.False(t, mr.Exists(seatKey("p1")))
	assert.False(t, mr.Exists(matchKey("ABCDEF")))

	// 🟢 Step 3: 无 TTL 绑定
	require.NoError(t, r.Bind(ctx, "p2", "ABCDEF", 0))
	assert.Equal(t, time.Duration(0), mr.TTL(seatKey("p2")))
}

func TestRedisRepo_ErrorsWrapped(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisRepo(rdb)
	mr.Close()

	_, err = r.Lookup(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup p1")
}
