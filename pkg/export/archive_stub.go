package export

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/google/uuid"
)

type ArchiveRepositoryStub struct {
	mu    sync.RWMutex
	items []ExportedBirthday
	err   error
}

func NewArchiveRepositoryStub() *ArchiveRepositoryStub {
	return &ArchiveRepositoryStub{}
}

func (r *ArchiveRepositoryStub) Archive(ctx context.Context, records []birthday.Birthday, exportedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, b := range records {
		r.items = append(r.items, ExportedBirthday{Birthday: b, ExportedAt: exportedAt})
	}
	return nil
}

func (r *ArchiveRepositoryStub) List(ctx context.Context, ownerId uuid.UUID) ([]ExportedBirthday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	result := make([]ExportedBirthday, 0)
	for _, e := range r.items {
		if e.OwnerId == ownerId {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ExportedAt.Equal(result[j].ExportedAt) {
			return result[i].Name < result[j].Name
		}
		return result[i].ExportedAt.After(result[j].ExportedAt)
	})
	return result, nil
}

// FailWith makes every following call return err. Pass nil to recover.
func (r *ArchiveRepositoryStub) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
