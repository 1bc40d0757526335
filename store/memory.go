package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used in tests and when no Redis URL is
// configured. Handlers run synchronously on the writing goroutine.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	subs   map[string]map[int]Handler
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		subs:   make(map[string]map[int]Handler),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[path], nil
}

func (s *MemoryStore) Set(_ context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values[path] = string(raw)
	handlers := s.handlersLocked(path)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(string(raw))
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	delete(s.values, path)
	handlers := s.handlersLocked(path)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn("")
	}
	return nil
}

func (s *MemoryStore) Subscribe(_ context.Context, path string, fn Handler) (func(), error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[path] == nil {
		s.subs[path] = make(map[int]Handler)
	}
	s.subs[path][id] = fn
	current := s.values[path]
	s.mu.Unlock()

	if current != "" {
		fn(current)
	}

	return func() {
		s.mu.Lock()
		delete(s.subs[path], id)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) handlersLocked(path string) []Handler {
	handlers := make([]Handler, 0, len(s.subs[path]))
	for _, fn := range s.subs[path] {
		handlers = append(handlers, fn)
	}
	return handlers
}
