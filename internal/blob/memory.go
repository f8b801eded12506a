package blob

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryStore keeps blobs in process. It backs tests and local runs.
type MemoryStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	tempPrefix string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), tempPrefix: "tmp"}
}

func (s *MemoryStore) Put(ctx context.Context, u Upload) (string, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return "", fmt.Errorf("blob: read %s: %w", u.Name, err)
	}
	key := tempName(s.tempPrefix, u.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *MemoryStore) Move(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[src]
	if !ok {
		return fmt.Errorf("blob: move %s: %w", src, ErrNotFound)
	}
	s.objects[dst] = data
	delete(s.objects, src)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, p)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Paths lists stored object paths in order.
func (s *MemoryStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
