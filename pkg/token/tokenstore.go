package tokenstore

import "sync"

// Store is the in-memory revocation list for token jti values. Tokens are
// minted by the account service; this process only remembers which ones were
// logged out. Constructed in main and injected alongside the gateway
// registry. A multi-instance deployment would back this with Redis.
type Store struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewStore() *Store {
	return &Store{revoked: make(map[string]struct{})}
}

func (s *Store) Revoke(jti string) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = struct{}{}
}

func (s *Store) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}
