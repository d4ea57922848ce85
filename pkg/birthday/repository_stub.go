package birthday

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Birthday
	err   error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items: make(map[uuid.UUID]Birthday),
	}
}

func (r *RepositoryStub) Store(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Birthday{}, r.err
	}

	birthday.Id = uuid.New()
	birthday.OwnerId = ownerId
	birthday.CreatedAt = time.Now()
	r.items[birthday.Id] = birthday
	return birthday, nil
}

func (r *RepositoryStub) GetAll(ctx context.Context, ownerId uuid.UUID) ([]Birthday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}

	result := make([]Birthday, 0)
	for _, b := range r.items {
		if b.OwnerId == ownerId {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DateOfBirth.Equal(result[j].DateOfBirth) {
			return result[i].Name < result[j].Name
		}
		return result[i].DateOfBirth.Before(result[j].DateOfBirth)
	})
	return result, nil
}

func (r *RepositoryStub) Get(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (Birthday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return Birthday{}, r.err
	}

	b, ok := r.items[id]
	if !ok || b.OwnerId != ownerId {
		return Birthday{}, ErrBirthdayNotFound
	}
	return b, nil
}

func (r *RepositoryStub) Update(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Birthday{}, r.err
	}

	existing, ok := r.items[birthday.Id]
	if !ok || existing.OwnerId != ownerId {
		return Birthday{}, ErrBirthdayNotFound
	}
	existing.Name = birthday.Name
	existing.DateOfBirth = birthday.DateOfBirth
	existing.Notes = birthday.Notes
	r.items[existing.Id] = existing
	return existing, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	b, ok := r.items[id]
	if !ok || b.OwnerId != ownerId {
		return ErrBirthdayNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *RepositoryStub) DeleteByIds(ctx context.Context, ownerId uuid.UUID, ids []uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		if b, ok := r.items[id]; ok && b.OwnerId == ownerId {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// FailWith makes every following call return err. Pass nil to recover.
func (r *RepositoryStub) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// FailDeletesWith wraps the stub so that only DeleteByIds fails.
func (r *RepositoryStub) FailDeletesWith(err error) Repository {
	return &failingDeletes{RepositoryStub: r, err: err}
}

type failingDeletes struct {
	*RepositoryStub
	err error
}

func (f *failingDeletes) DeleteByIds(ctx context.Context, ownerId uuid.UUID, ids []uuid.UUID) (int, error) {
	return 0, f.err
}
