package export

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	log "github.com/sirupsen/logrus"
)

const (
	HeaderEmailed  = "X-Export-Emailed"
	HeaderArchived = "X-Export-Archived"
	HeaderDeleted  = "X-Export-Deleted"
)

// ExportRequest optionally names the exporting user. When given it must match the authenticated user.
type ExportRequest struct {
	UserId    string `json:"userId" validate:"omitempty,uuid"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
}

type ExportedBirthdayDTO struct {
	birthday.BirthdayDTO
	ExportedAt string `json:"exported_at"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Export godoc
// @Summary Export and archive birthdays
// @Description Emails the birthdays as an ICS attachment, moves them to the export archive and returns the file. Step outcomes are reported in X-Export-* headers.
// @Tags Export
// @Accept json
// @Produce text/calendar
// @Param request body ExportRequest false "Exporting user, must match the authenticated user"
// @Success 200 {string} string "ICS document, or a JSON message when there is nothing to export"
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Failure 403 {object} rest.ErrorResponse "Request does not match the authenticated user"
// @Failure 500 {object} rest.ErrorResponse "Failed to fetch birthdays"
// @Router /api/export [post]
// @Security BearerAuth
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	log.Debug("Exporting birthdays")
	currentUser, err := user.CurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid request", Fields: err})
		return
	}
	if !matches(req, currentUser) {
		log.Warnf("user %s requested an export for another user", currentUser.Id)
		rest.WriteError(w, http.StatusForbidden, "Export request does not match the authenticated user")
		return
	}

	result, err := h.service.Export(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Count == 0 {
		rest.WriteJSON(w, http.StatusOK, rest.MessageResponse{Message: "No birthdays to export."})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename+`"`)
	w.Header().Set(HeaderEmailed, strconv.FormatBool(result.Emailed))
	w.Header().Set(HeaderArchived, strconv.FormatBool(result.Archived))
	w.Header().Set(HeaderDeleted, strconv.FormatBool(result.Deleted))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(result.Calendar)); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

// ListExported godoc
// @Summary List exported birthdays
// @Description Birthdays archived by previous exports, most recent first
// @Tags Export
// @Produce json
// @Success 200 {array} ExportedBirthdayDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/exported [get]
// @Security BearerAuth
func (h *Handler) ListExported(w http.ResponseWriter, r *http.Request) {
	exported, err := h.service.ListExported(r.Context())
	if errors.Is(err, user.ErrNoUser) {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]ExportedBirthdayDTO, 0, len(exported))
	for _, e := range exported {
		dtos = append(dtos, ExportedBirthdayDTO{
			BirthdayDTO: birthday.ToDTO(e.Birthday),
			ExportedAt:  e.ExportedAt.UTC().Format(time.RFC3339),
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func matches(req ExportRequest, u user.User) bool {
	if req.UserId != "" && !strings.EqualFold(req.UserId, u.Id.String()) {
		return false
	}
	if req.UserEmail != "" && !strings.EqualFold(req.UserEmail, u.Email) {
		return false
	}
	return true
}
