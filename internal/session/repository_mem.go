package session

import (
	"context"
	"sync"
	"time"
)

type memSeat struct {
	matchID   string
	expiresAt time.Time
}

type memRepo struct {
	mu      sync.Mutex
	seats   map[string]memSeat             // playerID -> seat
	matches map[string]map[string]struct{} // matchID -> set(playerID)
	now     func() time.Time
}

func NewMemoryRepo() Repo {
	return newMemoryRepo(time.Now)
}

func newMemoryRepo(now func() time.Time) *memRepo {
	return &memRepo{
		seats:   make(map[string]memSeat),
		matches: make(map[string]map[string]struct{}),
		now:     now,
	}
}

func (m *memRepo) Bind(ctx context.Context, playerID, matchID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.seats[playerID]; ok && old.matchID != matchID {
		m.removeLocked(playerID, old.matchID)
	}
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.seats[playerID] = memSeat{matchID: matchID, expiresAt: exp}
	if _, ok := m.matches[matchID]; !ok {
		m.matches[matchID] = make(map[string]struct{})
	}
	m.matches[matchID][playerID] = struct{}{}
	return nil
}

func (m *memRepo) Lookup(ctx context.Context, playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[playerID]
	if !ok {
		return "", nil
	}
	if m.expired(s) {
		m.removeLocked(playerID, s.matchID)
		return "", nil
	}
	return s.matchID, nil
}

func (m *memRepo) Unbind(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.seats[playerID]; ok {
		m.removeLocked(playerID, s.matchID)
	}
	return nil
}

func (m *memRepo) Count(ctx context.Context, matchID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(0)
	for id := range m.matches[matchID] {
		if s, ok := m.seats[id]; ok && !m.expired(s) {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Drop(ctx context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.matches[matchID] {
		if s, ok := m.seats[id]; ok && s.matchID == matchID {
			delete(m.seats, id)
		}
	}
	delete(m.matches, matchID)
	return nil
}

func (m *memRepo) expired(s memSeat) bool {
	return !s.expiresAt.IsZero() && !m.now().Before(s.expiresAt)
}

// 与 Redis 行为对齐：集合空了就删掉
func (m *memRepo) removeLocked(playerID, matchID string) {
	delete(m.seats, playerID)
	if set, ok := m.matches[matchID]; ok {
		delete(set, playerID)
		if len(set) == 0 {
			delete(m.matches, matchID)
		}
	}
}
