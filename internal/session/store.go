package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
)

// CookieName carries the session id.
const CookieName = "dashboard_session"

type entry struct {
	upload ingest.Upload
	seen   time.Time
}

// Store keeps each session's uploaded file in memory. Sessions never share
// entries; idle ones are dropped after the TTL.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry
}

// NewStore creates an empty store.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Valid reports whether id looks like an id issued by NewID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Put stores a copy of up for the session, replacing any earlier upload.
func (s *Store) Put(id string, up ingest.Upload) {
	data := make([]byte, len(up.Data))
	copy(data, up.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.entries[id] = &entry{upload: ingest.Upload{Name: up.Name, Data: data}, seen: s.now()}
}

// Get returns the session's upload, or nil.
func (s *Store) Get(id string) *ingest.Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	e.seen = s.now()
	up := e.upload
	return &up
}

// Delete forgets the session's upload.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.entries)
}

func (s *Store) pruneLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.seen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
