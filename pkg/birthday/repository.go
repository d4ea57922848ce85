package birthday

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrBirthdayNotFound = errors.New("birthday not found")

type Repository interface {
	Store(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error)
	GetAll(ctx context.Context, ownerId uuid.UUID) ([]Birthday, error)
	Get(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (Birthday, error)
	Update(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error)
	Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error
	// DeleteByIds removes the given birthdays of the owner and returns how many rows were deleted.
	// Ids that no longer exist are ignored.
	DeleteByIds(ctx context.Context, ownerId uuid.UUID, ids []uuid.UUID) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error) {
	query := `INSERT INTO birthdays (id, user_id, name, date_of_birth, notes)
				VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	birthday.Id = uuid.New()
	birthday.OwnerId = ownerId
	err := r.db.QueryRow(ctx, query,
		birthday.Id,
		ownerId,
		birthday.Name,
		birthday.DateOfBirth,
		nullableNotes(birthday.Notes),
	).Scan(&birthday.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not store birthday: %w", err)
		log.Error(err)
		return Birthday{}, err
	}
	return birthday, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, ownerId uuid.UUID) ([]Birthday, error) {
	query := `SELECT id, user_id, name, date_of_birth, notes, created_at
				FROM birthdays
				WHERE user_id = $1
				ORDER BY date_of_birth, name`

	rows, err := r.db.Query(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query birthdays: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	birthdays := make([]Birthday, 0, 10)
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		birthdays = append(birthdays, b)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return birthdays, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (Birthday, error) {
	query := `SELECT id, user_id, name, date_of_birth, notes, created_at
				FROM birthdays
				WHERE user_id = $1 AND id = $2`

	b, err := scanBirthday(r.db.QueryRow(ctx, query, ownerId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Birthday{}, ErrBirthdayNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get birthday: %w", err)
		log.Error(err)
		return Birthday{}, err
	}
	return b, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, ownerId uuid.UUID, birthday Birthday) (Birthday, error) {
	query := `UPDATE birthdays SET name = $1, date_of_birth = $2, notes = $3
				WHERE user_id = $4 AND id = $5
				RETURNING id, user_id, name, date_of_birth, notes, created_at`

	updated, err := scanBirthday(r.db.QueryRow(ctx, query,
		birthday.Name,
		birthday.DateOfBirth,
		nullableNotes(birthday.Notes),
		ownerId,
		birthday.Id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Birthday{}, ErrBirthdayNotFound
	} else if err != nil {
		err := fmt.Errorf("could not update birthday: %w", err)
		log.Error(err)
		return Birthday{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM birthdays WHERE user_id = $1 AND id = $2`, ownerId, id)
	if err != nil {
		err := fmt.Errorf("could not delete birthday: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBirthdayNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteByIds(ctx context.Context, ownerId uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.db.Exec(ctx, `DELETE FROM birthdays WHERE user_id = $1 AND id = ANY($2::uuid[])`, ownerId, idStrings(ids))
	if err != nil {
		err := fmt.Errorf("could not delete birthdays: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func scanBirthday(row pgx.Row) (Birthday, error) {
	var b Birthday
	var notes sql.NullString
	err := row.Scan(&b.Id, &b.OwnerId, &b.Name, &b.DateOfBirth, &notes, &b.CreatedAt)
	if err != nil {
		return Birthday{}, err
	}
	if notes.Valid {
		b.Notes = notes.String
	}
	return b, nil
}

func nullableNotes(notes string) sql.NullString {
	return sql.NullString{String: notes, Valid: notes != ""}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
