package sync_status

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu       sync.Mutex
	statuses map[uuid.UUID]SyncStatus
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{statuses: make(map[uuid.UUID]SyncStatus)}
}

func (r *RepositoryStub) Get(ctx context.Context, ownerId uuid.UUID) (SyncStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.statuses[ownerId]
	if !ok {
		return SyncStatus{OwnerId: ownerId}, nil
	}
	return status, nil
}

func (r *RepositoryStub) MarkSynced(ctx context.Context, ownerId uuid.UUID, at time.Time) (SyncStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := r.statuses[ownerId]
	status.OwnerId = ownerId
	status.CalendarSyncEnabled = true
	if status.FirstSyncDate == nil {
		first := at
		status.FirstSyncDate = &first
	}
	last := at
	status.LastSyncDate = &last
	r.statuses[ownerId] = status
	return status, nil
}
