package dedupe

import (
	"fmt"

	"github.com/ppiankov/moodlebank/internal/model"
)

// Staged layers uncommitted additions over a base set. Lookups see both;
// additions stay pending until Commit, so the base only learns about records
// that actually reached the corpus.
type Staged struct {
	base    IdentitySet
	pending []model.Identity
	keys    map[string]struct{}
}

// NewStaged wraps base
func NewStaged(base IdentitySet) *Staged {
	return &Staged{
		base: base,
		keys: make(map[string]struct{}),
	}
}

// Contains checks pending additions, then the base set
func (s *Staged) Contains(id model.Identity) bool {
	if _, ok := s.keys[id.Key()]; ok {
		return true
	}
	return s.base.Contains(id)
}

// Add records id as pending
func (s *Staged) Add(id model.Identity) error {
	key := id.Key()
	if _, ok := s.keys[key]; ok {
		return nil
	}
	s.keys[key] = struct{}{}
	s.pending = append(s.pending, id)
	return nil
}

// Pending returns the identities added since the last Commit
func (s *Staged) Pending() []model.Identity {
	return s.pending
}

// Commit writes pending identities to the base set
func (s *Staged) Commit() error {
	for i, id := range s.pending {
		if err := s.base.Add(id); err != nil {
			s.pending = s.pending[i:]
			return fmt.Errorf("commit identity: %w", err)
		}
		delete(s.keys, id.Key())
	}
	s.pending = nil
	return nil
}
