package otp

import (
	"context"
	"sync"
)

// MemoryStore keeps pending challenges in a mutex-guarded map. Challenges are
// lost on restart, which is acceptable for single-process deployments.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore builds an in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{challenges: make(map[string]Challenge)}
}

func (s *MemoryStore) Put(_ context.Context, key string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[key] = ch
	return nil
}

func (s *MemoryStore) Redeem(_ context.Context, key string, ch Challenge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.challenges[key]
	if !ok {
		return false, nil
	}
	if pending.Code != ch.Code || pending.Channel != ch.Channel {
		return false, nil
	}

	delete(s.challenges, key)
	return true, nil
}
