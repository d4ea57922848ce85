package invite

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	byCode map[string]Invite
	err    error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{byCode: make(map[string]Invite)}
}

func (r *RepositoryStub) GetByCode(ctx context.Context, code string) (Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return Invite{}, r.err
	}
	invite, ok := r.byCode[code]
	if !ok {
		return Invite{}, ErrInviteNotFound
	}
	return invite, nil
}

func (r *RepositoryStub) GetByOwner(ctx context.Context, ownerId uuid.UUID) (Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return Invite{}, r.err
	}
	for _, invite := range r.byCode {
		if invite.OwnerId == ownerId {
			return invite, nil
		}
	}
	return Invite{}, ErrInviteNotFound
}

func (r *RepositoryStub) Store(ctx context.Context, invite Invite) (Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Invite{}, r.err
	}
	for _, existing := range r.byCode {
		if existing.OwnerId == invite.OwnerId {
			return existing, nil
		}
	}
	if _, taken := r.byCode[invite.Code]; taken {
		return Invite{}, ErrCodeTaken
	}
	invite.CreatedAt = time.Now()
	r.byCode[invite.Code] = invite
	return invite, nil
}

// FailWith makes every following call return err. Pass nil to recover.
func (r *RepositoryStub) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
