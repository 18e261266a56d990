package mealplan

import (
	"sync"
	"time"

	"meal-planner/internal/pkg/common"
)

// Store keeps meal plans and their refinement sessions in memory.
type Store struct {
	mu          sync.RWMutex
	plans       map[string]*MealPlan
	plansByUser map[string][]string
	sessions    map[string]*RefinementSession
	byPlan      map[string]string
}

// NewStore creates an empty meal plan store.
func NewStore() *Store {
	return &Store{
		plans:       make(map[string]*MealPlan),
		plansByUser: make(map[string][]string),
		sessions:    make(map[string]*RefinementSession),
		byPlan:      make(map[string]string),
	}
}

// SavePlan stores a new plan, newest-first for the user.
func (s *Store) SavePlan(plan *MealPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	s.plansByUser[plan.UserID] = append([]string{plan.ID}, s.plansByUser[plan.UserID]...)
}

// GetPlan returns a plan by ID, or nil.
func (s *Store) GetPlan(id string) *MealPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[id]
}

// LatestPlan returns a user's most recent plan, or nil.
func (s *Store) LatestPlan(userID string) *MealPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.plansByUser[userID]
	if len(ids) == 0 {
		return nil
	}
	return s.plans[ids[0]]
}

// UpdatePlan replaces a plan's slots and bumps UpdatedAt.
func (s *Store) UpdatePlan(id string, slots []MealSlot) *MealPlan {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil
	}
	plan.Slots = slots
	plan.UpdatedAt = time.Now().UTC()
	return plan
}

// SessionFor returns the refinement session attached to a plan, creating
// it on first use.
func (s *Store) SessionFor(planID, userID string) *RefinementSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPlan[planID]; ok {
		return s.sessions[id]
	}
	session := &RefinementSession{
		ID:        common.GenerateUUID(),
		PlanID:    planID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[session.ID] = session
	s.byPlan[planID] = session.ID
	return session
}

// AppendMessage records one chat turn on a plan's session.
func (s *Store) AppendMessage(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	session.Messages = append(session.Messages, ChatMessage{
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	})
}
