package params

import (
	"bytes"
	"sync"
)

// ParamID identifies one independent set of proof parameters, typically
// one per circuit. IDs are caller-assigned and unique within a manager.
type ParamID = uint32

// Record holds the fixed data one parameter set contributes to device
// executions: the MSM bases, indexed by position, and the NTT omega.
// A record is immutable once stored; Put replaces it wholesale.
type Record struct {
	// Bases is an ordered sequence of packed point buffers, one per
	// bases index. Loaded once and referenced by index thereafter.
	Bases [][]byte
	// Omega is the packed root of unity used as the NTT twiddle
	// generator, or nil if the record carries no NTT parameters.
	Omega []byte
}

// BasesCount returns the number of loaded bases buffers.
func (r *Record) BasesCount() int {
	return len(r.Bases)
}

// Equal reports whether the record's contents are byte-identical to the
// supplied bases and omega. Used to detect idempotent re-initialization.
func (r *Record) Equal(bases [][]byte, omega []byte) bool {
	if len(r.Bases) != len(bases) {
		return false
	}
	for i := range bases {
		if !bytes.Equal(r.Bases[i], bases[i]) {
			return false
		}
	}
	return bytes.Equal(r.Omega, omega)
}

// Store is the keyed registry mapping param IDs to their records.
// Reads may run concurrently; writes are exclusive and atomic, so a
// concurrent reader sees either the old record or the new one, never a
// mix. The store never evicts on its own: bases are expensive to reload,
// so removal is always caller-driven.
type Store struct {
	mu      sync.RWMutex
	records map[ParamID]*Record
}

// NewStore creates an empty parameter store.
func NewStore() *Store {
	return &Store{records: make(map[ParamID]*Record)}
}

// Put creates or replaces the record for id. The input buffers are
// cloned so later caller mutations cannot reach a stored record.
func (s *Store) Put(id ParamID, bases [][]byte, omega []byte) {
	rec := &Record{}
	if len(bases) > 0 {
		rec.Bases = make([][]byte, len(bases))
		for i, b := range bases {
			rec.Bases[i] = bytes.Clone(b)
		}
	}
	if omega != nil {
		rec.Omega = bytes.Clone(omega)
	}

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()
}

// Get returns the record for id, or nil if none is loaded.
func (s *Store) Get(id ParamID) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// Remove drops the record for id, if present.
func (s *Store) Remove(id ParamID) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

// Clear drops every record. Called on deinit.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = make(map[ParamID]*Record)
	s.mu.Unlock()
}

// IDs returns the currently loaded param IDs in unspecified order.
func (s *Store) IDs() []ParamID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ParamID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
