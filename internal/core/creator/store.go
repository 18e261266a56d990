package creator

import (
	"sync"
	"time"

	"meal-planner/internal/core/source"
	"meal-planner/internal/pkg/common"
)

// PreferredCreator is a content creator a user wants prioritized during
// recipe search.
type PreferredCreator struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Source      source.Source `json:"source"`
	CreatorID   string        `json:"creator_id"`
	CreatorName string        `json:"creator_name"`
	URL         string        `json:"url"`
	AddedAt     time.Time     `json:"added_at"`
}

// Store keeps preferred creators in memory, in insertion order per user.
type Store struct {
	mu       sync.RWMutex
	creators map[string]*PreferredCreator
	byUser   map[string][]string
	index    map[indexKey]string
}

type indexKey struct {
	userID string
	src    source.Source
	id     string
}

// NewStore creates an empty creator store.
func NewStore() *Store {
	return &Store{
		creators: make(map[string]*PreferredCreator),
		byUser:   make(map[string][]string),
		index:    make(map[indexKey]string),
	}
}

// Add registers a creator for a user. Adding the same (source, creator)
// twice for one user returns the existing entry unchanged.
func (s *Store) Add(userID string, src source.Source, creatorID, creatorName, url string) *PreferredCreator {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := indexKey{userID: userID, src: src, id: creatorID}
	if existingID, ok := s.index[key]; ok {
		return s.creators[existingID]
	}

	c := &PreferredCreator{
		ID:          common.GenerateUUID(),
		UserID:      userID,
		Source:      src,
		CreatorID:   creatorID,
		CreatorName: creatorName,
		URL:         url,
		AddedAt:     time.Now().UTC(),
	}
	s.creators[c.ID] = c
	s.byUser[userID] = append(s.byUser[userID], c.ID)
	s.index[key] = c.ID
	return c
}

// Get returns a creator by ID, or nil.
func (s *Store) Get(id string) *PreferredCreator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creators[id]
}

// ListByUser returns a user's creators in the order they were added.
func (s *Store) ListByUser(userID string) []*PreferredCreator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]*PreferredCreator, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.creators[id])
	}
	return out
}

// Delete removes a creator owned by the given user. Returns false when the
// creator does not exist or belongs to someone else.
func (s *Store) Delete(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creators[id]
	if !ok || c.UserID != userID {
		return false
	}
	delete(s.creators, id)
	delete(s.index, indexKey{userID: userID, src: c.Source, id: c.CreatorID})

	ids := s.byUser[userID]
	for i, existing := range ids {
		if existing == id {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}
