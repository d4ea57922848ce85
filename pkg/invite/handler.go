package invite

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type InviteResponse struct {
	Code            string `json:"code"`
	InviteUrl       string `json:"inviteUrl"`
	SubscriptionUrl string `json:"subscriptionUrl"`
}

type CheckResponse struct {
	Valid bool `json:"valid"`
}

type SubmitRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required,notblank,max=200"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02,calendardate"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type SubmitResponse struct {
	Success bool `json:"success"`
}

type Handler struct {
	service Service
	host    string
}

// NewHandler creates the invite handler. host is the public base URL, e.g. https://birthdays.example.com.
func NewHandler(service Service, host string) *Handler {
	return &Handler{service: service, host: strings.TrimSuffix(host, "/")}
}

// Create godoc
// @Summary Get or create the invite link
// @Description Returns the current user's invite code, creating it on first use, with the invite and webcal subscription URLs
// @Tags Invite
// @Produce json
// @Success 200 {object} InviteResponse
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/invite [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting or creating invite")
	invite, err := h.service.GetOrCreate(r.Context())
	if errors.Is(err, user.ErrNoUser) {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rest.WriteJSON(w, http.StatusOK, InviteResponse{
		Code:            invite.Code,
		InviteUrl:       h.host + "/invite/" + invite.Code,
		SubscriptionUrl: SubscriptionUrl(h.host, invite.Code),
	})
}

// Check godoc
// @Summary Check an invite code
// @Tags Invite
// @Produce json
// @Param code path string true "Invite code"
// @Success 200 {object} CheckResponse
// @Failure 404 {object} rest.ErrorResponse "Invalid invite code"
// @Router /api/invite/{code} [get]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	_, err := h.service.Resolve(r.Context(), mux.Vars(r)["code"])
	if errors.Is(err, ErrInviteNotFound) {
		rest.WriteError(w, http.StatusNotFound, "Invalid invite code.")
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, CheckResponse{Valid: true})
}

// Submit godoc
// @Summary Submit a birthday through an invite
// @Description Adds a birthday to the invite owner's list. No authentication required.
// @Tags Invite
// @Accept json
// @Produce json
// @Param submission body SubmitRequest true "Invite code and birthday"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} rest.ErrorResponse "Invalid invite code or birthday data"
// @Failure 500 {object} rest.ErrorResponse "Failed to save birthday"
// @Router /api/invite/submit [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid birthday data", Fields: err})
		return
	}
	b, err := birthday.BirthdayRequest{Name: req.Name, DateOfBirth: req.DateOfBirth, Notes: req.Notes}.ToBirthday()
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid birthday data", Fields: err})
		return
	}

	_, err = h.service.Submit(r.Context(), req.Code, b)
	if errors.Is(err, ErrInviteNotFound) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invite code.")
		return
	}
	if err != nil {
		log.Errorf("failed to save birthday submitted through invite: %v", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Failed to save birthday.", Details: err.Error()})
		return
	}
	rest.WriteJSON(w, http.StatusOK, SubmitResponse{Success: true})
}

// SubscriptionUrl builds the webcal:// feed URL for code on host.
func SubscriptionUrl(host string, code string) string {
	address := host
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		address = u.Host + strings.TrimSuffix(u.Path, "/")
	}
	return "webcal://" + address + "/api/calendar?token=" + url.QueryEscape(code)
}
