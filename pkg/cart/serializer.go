package cart

import "sync"

// Serializer admits at most one in-flight mutation per line item, so a
// double-clicked quantity button cannot race a stale response over a newer
// one. It is a per-key gate, not a global cart lock: unrelated line items
// mutate independently and concurrently.
type Serializer struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSerializer returns a Serializer with no in-flight mutations.
func NewSerializer() *Serializer {
	return &Serializer{inflight: make(map[string]struct{})}
}

// Admit marks the line item busy and returns true if no mutation is currently
// in flight for it. A false return means the caller must drop the request;
// there is no queueing behind the in-flight one.
func (s *Serializer) Admit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

// Release clears the in-flight mark. It must be called unconditionally when
// the mutation resolves, applied or rejected.
func (s *Serializer) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// Busy reports whether a mutation is in flight for the line item.
func (s *Serializer) Busy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[id]
	return busy
}

// InFlight returns the number of line items with an unresolved mutation.
func (s *Serializer) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}
