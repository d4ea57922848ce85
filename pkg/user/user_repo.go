package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	// EnsureUser creates the account on first sight and keeps its email in sync with the identity provider.
	EnsureUser(ctx context.Context, id uuid.UUID, email string) (User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) (User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) EnsureUser(ctx context.Context, id uuid.UUID, email string) (User, error) {
	query := `INSERT INTO users (id, email) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
				RETURNING id, email, display_name, created_at`
	var user User
	err := u.db.QueryRow(ctx, query, id, email).Scan(&user.Id, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		log.Errorf("failed to ensure user %s: %v", id, err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT id, email, display_name, created_at FROM users WHERE id = $1`
	var user User
	err := u.db.QueryRow(ctx, query, id).Scan(&user.Id, &user.Email, &user.DisplayName, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("user with id %s not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) (User, error) {
	query := `UPDATE users SET display_name = $1 WHERE id = $2 RETURNING id, email, display_name, created_at`
	var user User
	err := u.db.QueryRow(ctx, query, displayName, id).Scan(&user.Id, &user.Email, &user.DisplayName, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Info("no rows affected of updating user")
		return User{}, ErrUserNotFound
	} else if err != nil {
		return User{}, fmt.Errorf("could not update user: %w", err)
	}
	return user, nil
}
