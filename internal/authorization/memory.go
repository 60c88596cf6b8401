package authorization

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

type memoryEntry struct {
	pending   Pending
	expiresAt time.Time
}

// MemoryStore keeps pending authorizations in process. Expired entries are dropped
// when read and by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	clock   adapter.Clock
	entries map[string]memoryEntry // by nonce
	matches map[string]string      // bounty:recipient -> nonce
}

var _ PendingStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process pending store
func NewMemoryStore(clock adapter.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]memoryEntry),
		matches: make(map[string]string),
	}
}

func (s *MemoryStore) Put(_ context.Context, p *Pending, ttl time.Duration) error {
	if p == nil || p.Nonce == "" {
		return fmt.Errorf("pending authorization has no nonce")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	match := matchKey(p.BountyID, p.Recipient)
	if previous, ok := s.matches[match]; ok {
		delete(s.entries, previous)
	}
	s.entries[p.Nonce] = memoryEntry{pending: *p, expiresAt: s.clock.Now().Add(ttl)}
	s.matches[match] = p.Nonce
	return nil
}

func (s *MemoryStore) Get(_ context.Context, nonce string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[nonce]
	if !ok {
		return nil, fmt.Errorf("pending authorization %s: %w", nonce, domain.ErrNotFound)
	}
	if s.expired(entry) {
		s.drop(nonce, entry)
		return nil, fmt.Errorf("pending authorization %s: %w", nonce, domain.ErrAuthorizationExpired)
	}

	p := entry.pending
	return &p, nil
}

func (s *MemoryStore) Take(_ context.Context, bountyID, recipient string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, ok := s.matches[matchKey(bountyID, recipient)]
	if !ok {
		return nil, nil
	}
	entry := s.entries[nonce]
	s.drop(nonce, entry)
	if s.expired(entry) {
		return nil, nil
	}

	p := entry.pending
	return &p, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for nonce, entry := range s.entries {
		if s.expired(entry) {
			s.drop(nonce, entry)
			dropped++
		}
	}
	return dropped, nil
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !s.clock.Now().Before(entry.expiresAt)
}

func (s *MemoryStore) drop(nonce string, entry memoryEntry) {
	delete(s.entries, nonce)
	match := matchKey(entry.pending.BountyID, entry.pending.Recipient)
	if s.matches[match] == nonce {
		delete(s.matches, match)
	}
}
