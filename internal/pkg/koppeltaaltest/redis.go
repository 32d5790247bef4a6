package koppeltaaltest

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// MemoryRedis is an in-process stand-in for the redis repository. Values
// are stored JSON encoded like the real one.
type MemoryRedis struct {
	mu      sync.Mutex
	Now     func() time.Time
	strings map[string]string
	expiry  map[string]time.Time
	hashes  map[string]map[string]string
	zsets   map[string]map[string]float64
}

var _ contracts.RedisRepository = (*MemoryRedis)(nil)

func NewMemoryRedis() *MemoryRedis {
	return &MemoryRedis{
		Now:     time.Now,
		strings: make(map[string]string),
		expiry:  make(map[string]time.Time),
		hashes:  make(map[string]map[string]string),
		zsets:   make(map[string]map[string]float64),
	}
}

func (m *MemoryRedis) expire(key string) {
	if at, ok := m.expiry[key]; ok && !m.Now().Before(at) {
		delete(m.strings, key)
		delete(m.expiry, key)
	}
}

func (m *MemoryRedis) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.strings, key)
		delete(m.expiry, key)
		delete(m.hashes, key)
		delete(m.zsets, key)
	}
	return nil
}

func (m *MemoryRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = string(raw)
	m.setExpiry(key, exp)
	return nil
}

func (m *MemoryRedis) setExpiry(key string, exp time.Duration) {
	if exp > 0 {
		m.expiry[key] = m.Now().Add(exp)
	} else {
		delete(m.expiry, key)
	}
}

func (m *MemoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expire(key)
	return m.strings[key], nil
}

func (m *MemoryRedis) TrySetNX(_ context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expire(key)
	if _, taken := m.strings[key]; taken {
		return false, nil
	}
	m.strings[key] = string(raw)
	m.setExpiry(key, exp)
	return true, nil
}

func (m *MemoryRedis) Expire(_ context.Context, key string, exp time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expire(key)
	if _, ok := m.strings[key]; !ok {
		return false, nil
	}
	m.setExpiry(key, exp)
	return true, nil
}

// TTL is the remaining lifetime of key, zero when it has none.
func (m *MemoryRedis) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.expiry[key]
	if !ok {
		return 0
	}
	return at.Sub(m.Now())
}

func (m *MemoryRedis) HashSet(_ context.Context, key string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.hashes[key]
	if !ok {
		hash = make(map[string]string)
		m.hashes[key] = hash
	}
	for field, value := range fields {
		switch v := value.(type) {
		case string:
			hash[field] = v
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			hash[field] = string(raw)
		}
	}
	return nil
}

func (m *MemoryRedis) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.hashes[key]))
	for field, value := range m.hashes[key] {
		out[field] = value
	}
	return out, nil
}

func (m *MemoryRedis) SortedSetAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.zsets[key]
	if !ok {
		set = make(map[string]float64)
		m.zsets[key] = set
	}
	set[member] = score
	return nil
}

func (m *MemoryRedis) SortedSetRangeByScore(_ context.Context, key string, max float64, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.zsets[key]
	members := make([]string, 0, len(set))
	for member, score := range set {
		if score <= max {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if set[members[i]] == set[members[j]] {
			return members[i] < members[j]
		}
		return set[members[i]] < set[members[j]]
	})
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

func (m *MemoryRedis) SortedSetRemove(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		delete(m.zsets[key], member)
	}
	return nil
}
