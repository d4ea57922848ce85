package birthday

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

type Service interface {
	GetAll(ctx context.Context) ([]Birthday, error)
	// GetAllForOwner lists the birthdays of ownerId, who is not the caller.
	GetAllForOwner(ctx context.Context, ownerId uuid.UUID) ([]Birthday, error)
	Get(ctx context.Context, id uuid.UUID) (Birthday, error)
	Create(ctx context.Context, birthday Birthday) (Birthday, error)
	// CreateForOwner stores a birthday on behalf of ownerId, who is not the caller.
	CreateForOwner(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error)
	Update(ctx context.Context, birthday Birthday) (Birthday, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Upcoming(ctx context.Context, limit int) ([]UpcomingBirthday, error)
}

type ServiceImpl struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus, clock: clock}
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Birthday, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) GetAllForOwner(ctx context.Context, ownerId uuid.UUID) ([]Birthday, error) {
	return s.repo.GetAll(ctx, ownerId)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (Birthday, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Birthday{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, birthday Birthday) (Birthday, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Birthday{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.store(ctx, userId, birthday, false)
}

func (s *ServiceImpl) CreateForOwner(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error) {
	return s.store(ctx, ownerId, birthday, true)
}

func (s *ServiceImpl) store(ctx context.Context, ownerId uuid.UUID, birthday Birthday, viaInvite bool) (Birthday, error) {
	stored, err := s.repo.Store(ctx, ownerId, birthday)
	if err != nil {
		return Birthday{}, fmt.Errorf("failed to store birthday: %w", err)
	}
	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.BirthdaySubmittedType, event_bus.BirthdaySubmitted{
		OwnerId:    ownerId,
		BirthdayId: stored.Id,
		ViaInvite:  viaInvite,
	}))
	if err != nil {
		log.Errorf("failed to publish birthday submitted event: %v", err)
	}
	return stored, nil
}

func (s *ServiceImpl) Update(ctx context.Context, birthday Birthday) (Birthday, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Birthday{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Update(ctx, userId, birthday)
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Upcoming returns the owner's birthdays ordered by their next yearly
// occurrence, today included. A 29 February birthday only recurs in leap years.
func (s *ServiceImpl) Upcoming(ctx context.Context, limit int) ([]UpcomingBirthday, error) {
	birthdays, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	today := utils.StartOfDay(s.clock.Now().UTC())

	upcoming := make([]UpcomingBirthday, 0, len(birthdays))
	for _, b := range birthdays {
		next, err := nextOccurrence(b.DateOfBirth, today)
		if err != nil {
			log.Warnf("skipping birthday %s: %v", b.Id, err)
			continue
		}
		upcoming = append(upcoming, UpcomingBirthday{
			Birthday:       b,
			NextOccurrence: next,
			DaysUntil:      utils.DaysBetween(today, next),
			TurningAge:     next.Year() - b.DateOfBirth.Year(),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextOccurrence.Before(upcoming[j].NextOccurrence)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func nextOccurrence(dateOfBirth time.Time, from time.Time) (time.Time, error) {
	y, m, d := dateOfBirth.Date()
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return time.Time{}, err
	}
	next := rule.After(from, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no occurrence after %s", from.Format(DateLayout))
	}
	return next, nil
}
