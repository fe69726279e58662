// Package registrar implements the single in-memory AoR -> contact
// mapping a SIP worker uses to route dialog-forming and in-dialog
// requests. There is no persistence: registrations are lost on
// restart, by design.
package registrar

import (
	"net"
	"sync"
	"time"
)

// Record is a registration: the contact an AoR advertised, the UDP
// socket and source address REGISTER arrived on (so inbound requests
// for this AoR are emitted from the same socket/interface), and the
// absolute expiry.
type Record struct {
	Contact    string
	Conn       net.PacketConn
	SourceAddr *net.UDPAddr
	Expiry     time.Time
}

// Store is the registrar map. The baseline design is a
// single SIP worker goroutine touching it, so the mutex here exists to
// make the store safe if a caller later runs multiple SIP workers
// against one Store — reads dominate, so RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// New returns an empty registrar store.
func New() *Store {
	return &Store{records: make(map[string]Record), now: time.Now}
}

// Upsert creates or replaces the registration for aor.
func (s *Store) Upsert(aor, contact string, conn net.PacketConn, src *net.UDPAddr, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[aor] = Record{Contact: contact, Conn: conn, SourceAddr: src, Expiry: expiry}
}

// Remove deletes the registration for aor, if any.
func (s *Store) Remove(aor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, aor)
}

// Lookup returns the registration for aor. An expired record is purged
// on access (lazy eviction) and reported as not found.
func (s *Store) Lookup(aor string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[aor]
	s.mu.RUnlock()
	if !ok {
		return Record{}, false
	}
	if !rec.Expiry.After(s.now()) {
		s.mu.Lock()
		// Re-check under the write lock: another goroutine may have
		// refreshed or removed it between RUnlock and Lock.
		if cur, stillThere := s.records[aor]; stillThere && !cur.Expiry.After(s.now()) {
			delete(s.records, aor)
		}
		s.mu.Unlock()
		return Record{}, false
	}
	return rec, true
}

// Len reports the number of live registrations, purging expired
// entries first. Intended for debug logging and tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for aor, rec := range s.records {
		if !rec.Expiry.After(now) {
			delete(s.records, aor)
		}
	}
	return len(s.records)
}
