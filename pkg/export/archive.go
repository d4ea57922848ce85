package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ExportedBirthday is an archived copy of a birthday removed by an export.
type ExportedBirthday struct {
	birthday.Birthday
	ExportedAt time.Time
}

type ArchiveRepository interface {
	// Archive copies records into the archive stamped with exportedAt. Either all records are archived or none.
	Archive(ctx context.Context, records []birthday.Birthday, exportedAt time.Time) error
	// List returns the owner's archive, most recent export first.
	List(ctx context.Context, ownerId uuid.UUID) ([]ExportedBirthday, error)
}

type ArchiveRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewArchiveRepository(db *pgxpool.Pool) *ArchiveRepositoryImpl {
	return &ArchiveRepositoryImpl{db: db}
}

func (r *ArchiveRepositoryImpl) Archive(ctx context.Context, records []birthday.Birthday, exportedAt time.Time) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO exported_birthdays (id, user_id, name, date_of_birth, notes, exported_at)
				VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for _, b := range records {
		batch.Queue(query, b.Id, b.OwnerId, b.Name, b.DateOfBirth, sql.NullString{String: b.Notes, Valid: b.Notes != ""}, exportedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		err := fmt.Errorf("could not archive birthdays: %w", err)
		log.Error(err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		err := fmt.Errorf("could not commit archive: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *ArchiveRepositoryImpl) List(ctx context.Context, ownerId uuid.UUID) ([]ExportedBirthday, error) {
	query := `SELECT id, user_id, name, date_of_birth, notes, exported_at
				FROM exported_birthdays
				WHERE user_id = $1
				ORDER BY exported_at DESC, name`

	rows, err := r.db.Query(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query exported birthdays: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	result := make([]ExportedBirthday, 0)
	for rows.Next() {
		var e ExportedBirthday
		var notes sql.NullString
		if err := rows.Scan(&e.Id, &e.OwnerId, &e.Name, &e.DateOfBirth, &notes, &e.ExportedAt); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		e.Notes = notes.String
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return result, nil
}
