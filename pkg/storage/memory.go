package storage

import (
	"strconv"
	"sync"
)

// MemoryStore keeps settled bets and trends in memory. Used when the
// database is disabled and as the store in tests.
type MemoryStore struct {
	mu     sync.Mutex
	bets   []SettledBet
	trends map[string]RoundTrend // keyed timeframe:round
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bets:   make([]SettledBet, 0),
		trends: make(map[string]RoundTrend),
	}
}

func (m *MemoryStore) SaveBet(b SettledBet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets = append(m.bets, b)
	return nil
}

func (m *MemoryStore) SaveTrend(t RoundTrend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := trendKey(t.Timeframe, t.RoundNumber)
	if _, ok := m.trends[key]; ok {
		return nil
	}
	m.trends[key] = t
	return nil
}

func (m *MemoryStore) GetBets() []SettledBet {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to avoid race
	out := make([]SettledBet, len(m.bets))
	copy(out, m.bets)
	return out
}

func (m *MemoryStore) TrendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trends)
}

func trendKey(timeframe string, round int) string {
	return timeframe + ":" + strconv.Itoa(round)
}
