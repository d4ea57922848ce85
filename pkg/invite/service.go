package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	log "github.com/sirupsen/logrus"
)

const maxCodeAttempts = 5

type Service interface {
	// GetOrCreate returns the current user's invite, creating it on first use.
	GetOrCreate(ctx context.Context) (Invite, error)
	Resolve(ctx context.Context, code string) (Invite, error)
	// Submit stores a birthday for the owner of code.
	Submit(ctx context.Context, code string, b birthday.Birthday) (birthday.Birthday, error)
}

type ServiceImpl struct {
	repo      Repository
	birthdays birthday.Service
	newCode   func() (string, error)
}

func NewService(repo Repository, birthdays birthday.Service) *ServiceImpl {
	return &ServiceImpl{repo: repo, birthdays: birthdays, newCode: GenerateCode}
}

func (s *ServiceImpl) GetOrCreate(ctx context.Context) (Invite, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return Invite{}, fmt.Errorf("failed to get current user: %w", err)
	}

	existing, err := s.repo.GetByOwner(ctx, ownerId)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrInviteNotFound) {
		return Invite{}, err
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return Invite{}, fmt.Errorf("failed to generate invite code: %w", err)
		}
		stored, err := s.repo.Store(ctx, Invite{Code: code, OwnerId: ownerId})
		if errors.Is(err, ErrCodeTaken) {
			log.Debugf("invite code collision on attempt %d", attempt)
			continue
		}
		if err != nil {
			return Invite{}, err
		}
		log.Infof("created invite for user %s", ownerId)
		return stored, nil
	}
	return Invite{}, fmt.Errorf("no free invite code after %d attempts", maxCodeAttempts)
}

func (s *ServiceImpl) Resolve(ctx context.Context, code string) (Invite, error) {
	code = NormalizeCode(code)
	if len(code) != CodeLength {
		return Invite{}, ErrInviteNotFound
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *ServiceImpl) Submit(ctx context.Context, code string, b birthday.Birthday) (birthday.Birthday, error) {
	invite, err := s.Resolve(ctx, code)
	if err != nil {
		return birthday.Birthday{}, err
	}
	return s.birthdays.CreateForOwner(ctx, invite.OwnerId, b)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
