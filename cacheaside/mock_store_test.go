package cacheaside

import (
	"context"
	"strings"
	"sync"
	"time"
)

// mockStore is an in-memory cache.Store that records calls and can be told to fail.
type mockStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	ttls      map[string]time.Duration
	calls     []string
	getErr    error
	setErr    error
	deleteErr map[string]error
}

func newMockStore() *mockStore {
	return &mockStore{
		data:      make(map[string][]byte),
		ttls:      make(map[string]time.Duration),
		deleteErr: make(map[string]error),
	}
}

func (m *mockStore) recordCall(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockStore) countCalls(prefix string) int {
	n := 0
	for _, c := range m.getCalls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Get " + key)
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Set " + key)
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("DeleteByPrefix " + prefix)
	if err := m.deleteErr[prefix]; err != nil {
		return 0, err
	}
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *mockStore) put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
