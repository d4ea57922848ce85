package invite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	// ErrCodeTaken is returned by Store when another owner already holds the code.
	ErrCodeTaken = errors.New("invite code already taken")
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (Invite, error)
	GetByOwner(ctx context.Context, ownerId uuid.UUID) (Invite, error)
	// Store saves the invite. When the owner already has one, the existing invite is returned instead.
	Store(ctx context.Context, invite Invite) (Invite, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetByCode(ctx context.Context, code string) (Invite, error) {
	query := `SELECT invite_code, user_id, created_at FROM invites WHERE invite_code = $1`
	return r.getOne(ctx, query, code)
}

func (r *RepositoryImpl) GetByOwner(ctx context.Context, ownerId uuid.UUID) (Invite, error) {
	query := `SELECT invite_code, user_id, created_at FROM invites WHERE user_id = $1`
	return r.getOne(ctx, query, ownerId)
}

func (r *RepositoryImpl) getOne(ctx context.Context, query string, arg any) (Invite, error) {
	var invite Invite
	err := r.db.QueryRow(ctx, query, arg).Scan(&invite.Code, &invite.OwnerId, &invite.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invite{}, ErrInviteNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get invite: %w", err)
		log.Error(err)
		return Invite{}, err
	}
	return invite, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, invite Invite) (Invite, error) {
	query := `INSERT INTO invites (invite_code, user_id) VALUES ($1, $2)
				ON CONFLICT (user_id) DO NOTHING
				RETURNING invite_code, user_id, created_at`

	var stored Invite
	err := r.db.QueryRow(ctx, query, invite.Code, invite.OwnerId).Scan(&stored.Code, &stored.OwnerId, &stored.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// a concurrent request created the owner's invite first
		return r.GetByOwner(ctx, invite.OwnerId)
	}
	if pgErr := new(pgconn.PgError); errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Invite{}, ErrCodeTaken
	}
	if err != nil {
		err := fmt.Errorf("could not store invite: %w", err)
		log.Error(err)
		return Invite{}, err
	}
	return stored, nil
}
