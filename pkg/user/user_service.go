package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	EnsureUser(ctx context.Context, id uuid.UUID, email string) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
	UpdateCurrentUser(ctx context.Context, displayName string) (User, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) EnsureUser(ctx context.Context, id uuid.UUID, email string) (User, error) {
	return u.repo.EnsureUser(ctx, id, email)
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) UpdateCurrentUser(ctx context.Context, displayName string) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.UpdateDisplayName(ctx, userId, displayName)
}
