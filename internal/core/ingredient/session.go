package ingredient

import (
	"sync"
	"time"

	"meal-planner/internal/pkg/common"
)

// SessionItem is an ingredient inside a session, with availability state.
type SessionItem struct {
	Ingredient
	Status string `json:"status"`
}

const (
	StatusAvailable = "available"
	StatusUsed      = "used"
)

// Session is one user's parsed pantry snapshot.
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	RawText   string        `json:"raw_text"`
	Items     []SessionItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AvailableIngredients returns the names of items still marked available.
func (s *Session) AvailableIngredients() []string {
	names := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Status == StatusAvailable {
			names = append(names, item.Name)
		}
	}
	return names
}

// SessionStore keeps ingredient sessions in memory, newest-first per user.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[string][]string
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[string][]string),
	}
}

// Create stores a new session from parsed ingredients, all marked available.
func (s *SessionStore) Create(userID, rawText string, ingredients []Ingredient) *Session {
	items := make([]SessionItem, len(ingredients))
	for i, ing := range ingredients {
		items[i] = SessionItem{Ingredient: ing, Status: StatusAvailable}
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        common.GenerateUUID(),
		UserID:    userID,
		RawText:   rawText,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.byUser[userID] = append([]string{session.ID}, s.byUser[userID]...)
	return session
}

// Get returns a session by ID, or nil.
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Latest returns a user's most recent session, or nil.
func (s *SessionStore) Latest(userID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	if len(ids) == 0 {
		return nil
	}
	return s.sessions[ids[0]]
}

// AddItem appends an ingredient to a session. Returns false when the
// session does not exist or belongs to another user.
func (s *SessionStore) AddItem(userID, sessionID string, ing Ingredient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.owned(userID, sessionID)
	if !ok {
		return false
	}
	session.Items = append(session.Items, SessionItem{Ingredient: ing, Status: StatusAvailable})
	session.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveItem deletes the named ingredient from a session.
func (s *SessionStore) RemoveItem(userID, sessionID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.owned(userID, sessionID)
	if !ok {
		return false
	}
	for i, item := range session.Items {
		if item.Name == name {
			session.Items = append(session.Items[:i], session.Items[i+1:]...)
			session.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// UpdateStatus changes one item's availability status.
func (s *SessionStore) UpdateStatus(userID, sessionID, name, status string) bool {
	if status != StatusAvailable && status != StatusUsed {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.owned(userID, sessionID)
	if !ok {
		return false
	}
	for i := range session.Items {
		if session.Items[i].Name == name {
			session.Items[i].Status = status
			session.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

func (s *SessionStore) owned(userID, sessionID string) (*Session, bool) {
	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, false
	}
	return session, true
}
