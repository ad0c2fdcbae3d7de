// Package store tracks delivered message IDs using a Bloom filter in front of an LRU cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenStore remembers the most recent message IDs so that a redelivered
// message is handled only once.
type SeenStore struct {
	mutex             sync.Mutex
	bloom             *bloom.BloomFilter
	recent            *lru.Cache[string, struct{}]
	capacity          int
	falsePositiveRate float64
	inserted          int // filter insertions since the last rebuild
}

// NewSeenStore creates a store that remembers up to capacity IDs.
func NewSeenStore(capacity int, falsePositiveRate float64) (*SeenStore, error) {
	if capacity <= 0 {
		capacity = 1
	}

	recent, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}

	return &SeenStore{
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		recent:            recent,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}, nil
}

// MarkSeen records id and reports whether it had not been seen before.
func (s *SeenStore) MarkSeen(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// The filter has no false negatives, so a miss is definitely new.
	if s.bloom.TestString(id) && s.recent.Contains(id) {
		return false
	}

	s.recent.Add(id, struct{}{})
	s.bloom.AddString(id)
	s.inserted++

	// Evicted IDs stay in the filter; rebuild once it has seen far more
	// insertions than it was sized for so the false-positive rate holds.
	if s.inserted > 2*s.capacity {
		s.rebuild()
	}
	return true
}

// Len returns the number of IDs currently remembered.
func (s *SeenStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.recent.Len()
}

func (s *SeenStore) rebuild() {
	s.bloom = bloom.NewWithEstimates(uint(s.capacity), s.falsePositiveRate)
	for _, id := range s.recent.Keys() {
		s.bloom.AddString(id)
	}
	s.inserted = s.recent.Len()
}
