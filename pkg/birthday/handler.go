package birthday

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultUpcomingLimit = 5

type BirthdayDTO struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Notes       string `json:"notes,omitempty"`
}

type UpcomingBirthdayDTO struct {
	BirthdayDTO
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
	TurningAge     int    `json:"turning_age"`
}

// BirthdayRequest is the payload for creating or updating a birthday.
type BirthdayRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02,calendardate"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// ToBirthday validates the request and converts it into a Birthday.
func (req BirthdayRequest) ToBirthday() (Birthday, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return Birthday{}, err
	}
	dateOfBirth, err := ParseDate(req.DateOfBirth)
	if err != nil {
		return Birthday{}, validation.ValidationErrors{{Field: "date_of_birth", Tag: "calendardate"}}
	}
	return Birthday{Name: strings.TrimSpace(req.Name), DateOfBirth: dateOfBirth, Notes: req.Notes}, nil
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List birthdays
// @Description List the current user's birthdays ordered by date of birth
// @Tags Birthday
// @Produce json
// @Success 200 {array} BirthdayDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/birthday [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing birthdays")
	birthdays, err := h.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]BirthdayDTO, 0, len(birthdays))
	for _, b := range birthdays {
		dtos = append(dtos, ToDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a birthday
// @Tags Birthday
// @Produce json
// @Param id path string true "Birthday ID"
// @Success 200 {object} BirthdayDTO
// @Failure 404 {object} rest.ErrorResponse "Birthday not found"
// @Router /api/birthday/{id} [get]
// @Security BearerAuth
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(b))
}

// Create godoc
// @Summary Add a birthday
// @Tags Birthday
// @Accept json
// @Produce json
// @Param birthday body BirthdayRequest true "Birthday"
// @Success 201 {object} BirthdayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/birthday [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating birthday")
	b, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), b)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

// Update godoc
// @Summary Update a birthday
// @Tags Birthday
// @Accept json
// @Produce json
// @Param id path string true "Birthday ID"
// @Param birthday body BirthdayRequest true "Birthday"
// @Success 200 {object} BirthdayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Birthday not found"
// @Router /api/birthday/{id} [put]
// @Security BearerAuth
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	b, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	b.Id = id

	updated, err := h.service.Update(r.Context(), b)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Delete godoc
// @Summary Delete a birthday
// @Tags Birthday
// @Param id path string true "Birthday ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Birthday not found"
// @Router /api/birthday/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Upcoming godoc
// @Summary List upcoming birthdays
// @Description Birthdays ordered by their next occurrence, today included
// @Tags Birthday
// @Produce json
// @Param limit query int false "Maximum number of entries (default 5)"
// @Success 200 {array} UpcomingBirthdayDTO
// @Router /api/birthday/upcoming [get]
// @Security BearerAuth
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit := defaultUpcomingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{
				Error:   "Invalid limit",
				Details: "'limit' must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	upcoming, err := h.service.Upcoming(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]UpcomingBirthdayDTO, 0, len(upcoming))
	for _, u := range upcoming {
		dtos = append(dtos, UpcomingBirthdayDTO{
			BirthdayDTO:    ToDTO(u.Birthday),
			NextOccurrence: FormatDate(u.NextOccurrence),
			DaysUntil:      u.DaysUntil,
			TurningAge:     u.TurningAge,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (Birthday, bool) {
	var req BirthdayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return Birthday{}, false
	}
	b, err := req.ToBirthday()
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid birthday data", Fields: err})
		return Birthday{}, false
	}
	return b, true
}

func pathId(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, "Birthday not found")
		return uuid.Nil, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, ErrBirthdayNotFound):
		rest.WriteError(w, http.StatusNotFound, "Birthday not found")
	default:
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func ToDTO(b Birthday) BirthdayDTO {
	return BirthdayDTO{
		Id:          b.Id.String(),
		Name:        b.Name,
		DateOfBirth: FormatDate(b.DateOfBirth),
		Notes:       b.Notes,
	}
}
