package corpus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/moodlebank/internal/cache"
	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/rs/zerolog/log"
)

// seededKey marks a store that has already absorbed the text corpus. It sits
// outside cache.KeyPrefix so it is never counted as an identity.
const seededKey = "moodlebank:seeded"

// Store is a persisted identity set. The text corpus stays the readable
// export; the store is what duplicate detection consults.
type Store struct {
	cache cache.Cache
}

// OpenStore opens the store in dir, seeding it from the corpus at corpusPath
// the first time it is used.
func OpenStore(dir, corpusPath string) (*Store, error) {
	s := NewDiskStore(dir)
	if _, seeded := s.cache.Get(seededKey); seeded {
		return s, nil
	}
	if _, err := s.Seed(corpusPath); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDiskStore returns the store kept in dir without seeding it
func NewDiskStore(dir string) *Store {
	return NewStore(cache.NewLayeredCache(0, dir, 0))
}

// NewStore wraps an existing cache without seeding
func NewStore(c cache.Cache) *Store {
	return &Store{cache: c}
}

// Contains reports whether the identity has been stored
func (s *Store) Contains(id model.Identity) bool {
	_, ok := s.cache.Get(cache.Key(id.Key()))
	return ok
}

// Add persists an identity
func (s *Store) Add(id model.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.cache.Set(cache.Key(id.Key()), data, 0); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	return nil
}

// Seed adds every identity of the corpus at corpusPath and marks the store as
// seeded. It returns the number of identities read from the corpus.
func (s *Store) Seed(corpusPath string) (int, error) {
	idx, err := LoadIndex(corpusPath)
	if err != nil {
		return 0, fmt.Errorf("seed store: %w", err)
	}

	for _, id := range idx.Identities() {
		if err := s.Add(id); err != nil {
			return 0, fmt.Errorf("seed store: %w", err)
		}
	}
	if err := s.cache.Set(seededKey, []byte(corpusPath), 0); err != nil {
		return 0, fmt.Errorf("mark store seeded: %w", err)
	}

	log.Debug().Str("corpus", corpusPath).Int("identities", idx.Len()).Msg("seeded identity store")
	return idx.Len(), nil
}

// Rebuild discards the store and seeds it again from the corpus
func (s *Store) Rebuild(corpusPath string) (int, error) {
	if err := s.cache.Clear(); err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}
	return s.Seed(corpusPath)
}

// Len returns the number of stored identities
func (s *Store) Len() (int, error) {
	lister, ok := s.cache.(cache.Lister)
	if !ok {
		return 0, fmt.Errorf("store backend cannot list keys")
	}

	keys, err := lister.Keys()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, k := range keys {
		if strings.HasPrefix(k, cache.KeyPrefix) {
			n++
		}
	}
	return n, nil
}
