package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type StubUserRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{data: map[uuid.UUID]User{}}
}

func (s *StubUserRepository) EnsureUser(ctx context.Context, id uuid.UUID, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[id]
	if !ok {
		user = User{Id: id, CreatedAt: time.Now()}
	}
	user.Email = email
	s.data[id] = user
	return user, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.DisplayName = displayName
	s.data[id] = user
	return user, nil
}
