package sync_status

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus records whether the owner has opened the calendar subscription.
// It is informational only and never gates the feed.
type SyncStatus struct {
	OwnerId             uuid.UUID
	CalendarSyncEnabled bool
	FirstSyncDate       *time.Time
	LastSyncDate        *time.Time
}
