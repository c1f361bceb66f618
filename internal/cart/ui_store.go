package cart

import "sync"

// DefaultUIStoreSize bounds the number of open drawers kept in memory.
const DefaultUIStoreSize = 10000

// MemoryUIStore only keeps owners whose drawer is open. Once full, an
// arbitrary entry is dropped, which at worst shows that drawer closed.
type MemoryUIStore struct {
	mu     sync.RWMutex
	states map[string]UIState
	limit  int
}

func NewMemoryUIStore() *MemoryUIStore {
	return NewBoundedUIStore(DefaultUIStoreSize)
}

func NewBoundedUIStore(limit int) *MemoryUIStore {
	if limit < 1 {
		limit = DefaultUIStoreSize
	}
	return &MemoryUIStore{states: make(map[string]UIState), limit: limit}
}

func (s *MemoryUIStore) Get(owner string) UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[owner]
}

func (s *MemoryUIStore) Set(owner string, state UIState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == (UIState{}) {
		delete(s.states, owner)
		return
	}
	if _, ok := s.states[owner]; !ok && len(s.states) >= s.limit {
		for k := range s.states {
			delete(s.states, k)
			break
		}
	}
	s.states[owner] = state
}

func (s *MemoryUIStore) Reset(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, owner)
}

func (s *MemoryUIStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
