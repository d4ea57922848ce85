package sync_status

import (
	"context"
	"fmt"

	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
)

type Service interface {
	Get(ctx context.Context) (SyncStatus, error)
	// MarkSynced records that the current user opened the subscription link.
	MarkSynced(ctx context.Context) (SyncStatus, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Get(ctx context.Context) (SyncStatus, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId)
}

func (s *ServiceImpl) MarkSynced(ctx context.Context) (SyncStatus, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.MarkSynced(ctx, userId, s.clock.Now())
}
