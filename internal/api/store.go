package api

import (
	"sort"
	"sync"
	"time"

	"github.com/samcharles93/palmdb/pkg/pdb"
)

// Entry is one uploaded container. Entries are immutable once stored.
type Entry struct {
	ID          string
	Filename    string
	CreatedAt   time.Time
	Size        int
	DB          *pdb.GenericDatabase
	Index       pdb.Index
	Diagnostics pdb.Diagnostics
}

// DatabaseStore holds uploaded containers in memory.
type DatabaseStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	bytes   int64
}

func NewDatabaseStore() *DatabaseStore {
	return &DatabaseStore{
		entries: make(map[string]*Entry),
	}
}

// Save stores e under a new id and returns it.
func (s *DatabaseStore) Save(e Entry) *Entry {
	e.ID = newDatabaseID()

	s.mu.Lock()
	s.entries[e.ID] = &e
	s.bytes += int64(e.Size)
	s.mu.Unlock()

	return &e
}

func (s *DatabaseStore) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *DatabaseStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.bytes -= int64(e.Size)
	delete(s.entries, id)
	return true
}

// List returns every entry, oldest first.
func (s *DatabaseStore) List() []*Entry {
	s.mu.RLock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stats reports the number of stored containers and their total size.
func (s *DatabaseStore) Stats() (count int, bytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), s.bytes
}
