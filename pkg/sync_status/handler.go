package sync_status

import (
	"errors"
	"net/http"
	"time"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
)

type SyncStatusDTO struct {
	CalendarSyncEnabled bool    `json:"calendarSyncEnabled"`
	FirstSyncDate       *string `json:"firstSyncDate"`
	LastSyncDate        *string `json:"lastSyncDate"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Get godoc
// @Summary Get calendar sync status
// @Tags Sync
// @Produce json
// @Success 200 {object} SyncStatusDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/sync [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Get(r.Context())
	h.write(w, status, err)
}

// MarkSynced godoc
// @Summary Mark the calendar subscription as opened
// @Tags Sync
// @Produce json
// @Success 200 {object} SyncStatusDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/sync [put]
// @Security BearerAuth
func (h *Handler) MarkSynced(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.MarkSynced(r.Context())
	h.write(w, status, err)
}

func (h *Handler) write(w http.ResponseWriter, status SyncStatus, err error) {
	if errors.Is(err, user.ErrNoUser) {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, SyncStatusDTO{
		CalendarSyncEnabled: status.CalendarSyncEnabled,
		FirstSyncDate:       formatTime(status.FirstSyncDate),
		LastSyncDate:        formatTime(status.LastSyncDate),
	})
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
