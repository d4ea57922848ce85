package sync_status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Get returns the owner's status, or a disabled status when none was recorded.
	Get(ctx context.Context, ownerId uuid.UUID) (SyncStatus, error)
	// MarkSynced enables sync, sets the first sync date once and the last sync date to at.
	MarkSynced(ctx context.Context, ownerId uuid.UUID, at time.Time) (SyncStatus, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, ownerId uuid.UUID) (SyncStatus, error) {
	query := `SELECT user_id, calendar_sync_enabled, first_sync_date, last_sync_date
				FROM sync_status WHERE user_id = $1`

	status, err := scanStatus(r.db.QueryRow(ctx, query, ownerId))
	if errors.Is(err, pgx.ErrNoRows) {
		return SyncStatus{OwnerId: ownerId}, nil
	} else if err != nil {
		err := fmt.Errorf("could not get sync status: %w", err)
		log.Error(err)
		return SyncStatus{}, err
	}
	return status, nil
}

func (r *RepositoryImpl) MarkSynced(ctx context.Context, ownerId uuid.UUID, at time.Time) (SyncStatus, error) {
	query := `INSERT INTO sync_status (user_id, calendar_sync_enabled, first_sync_date, last_sync_date)
				VALUES ($1, TRUE, $2, $2)
				ON CONFLICT (user_id) DO UPDATE SET
					calendar_sync_enabled = TRUE,
					first_sync_date = COALESCE(sync_status.first_sync_date, EXCLUDED.first_sync_date),
					last_sync_date = EXCLUDED.last_sync_date
				RETURNING user_id, calendar_sync_enabled, first_sync_date, last_sync_date`

	status, err := scanStatus(r.db.QueryRow(ctx, query, ownerId, at))
	if err != nil {
		err := fmt.Errorf("could not update sync status: %w", err)
		log.Error(err)
		return SyncStatus{}, err
	}
	return status, nil
}

func scanStatus(row pgx.Row) (SyncStatus, error) {
	var status SyncStatus
	err := row.Scan(&status.OwnerId, &status.CalendarSyncEnabled, &status.FirstSyncDate, &status.LastSyncDate)
	return status, err
}
