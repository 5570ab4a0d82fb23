package rbac

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemorySource is a thread-safe in-memory Source.
type MemorySource struct {
	mu    sync.RWMutex
	roles map[uuid.UUID][]Assignment
}

func NewMemorySource(assignments ...Assignment) *MemorySource {
	s := &MemorySource{roles: make(map[uuid.UUID][]Assignment)}
	for _, a := range assignments {
		s.roles[a.UserID] = append(s.roles[a.UserID], a)
	}
	return s
}

func (s *MemorySource) GetRoles(ctx context.Context, userID uuid.UUID) ([]Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles[userID]), nil
}

// Grant adds an assignment.
func (s *MemorySource) Grant(a Assignment) {
	s.mu.Lock()
	s.roles[a.UserID] = append(s.roles[a.UserID], a)
	s.mu.Unlock()
}

// Revoke removes all assignments of userID.
func (s *MemorySource) Revoke(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.roles, userID)
	s.mu.Unlock()
}
