package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// IdempotencyStore claves de idempotencia con TTL, para una sola instancia sin Redis.
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time // clave → vencimiento
	now  func() time.Time
}

// NewIdempotencyStore crea el store con el TTL indicado.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

// Reserve retorna false si la clave sigue vigente. De paso descarta las claves vencidas.
func (s *IdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.keys {
		if !now.Before(exp) {
			delete(s.keys, k)
		}
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	// copia propia: el llamador puede pasar un string respaldado por un buffer reutilizable
	s.keys[strings.Clone(key)] = now.Add(s.ttl)
	return true, nil
}

// Release libera la clave.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Len claves vigentes o aún no descartadas.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
