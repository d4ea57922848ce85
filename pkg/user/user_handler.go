package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type UpdateUserRequest struct {
	DisplayName string `json:"displayName" validate:"max=100"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's profile
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/user/current [get]
// @Security BearerAuth
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeUserError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateUser godoc
// @Summary Update current user
// @Description Update the display name of the currently authenticated user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UpdateUserRequest true "Profile"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/user/current [put]
// @Security BearerAuth
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid user data", Fields: err})
		return
	}

	updatedUser, err := h.userService.UpdateCurrentUser(r.Context(), req.DisplayName)
	if err != nil {
		writeUserError(w, err)
		return
	}
	log.Debugf("Updated user: %s", updatedUser.Id)

	rest.WriteJSON(w, http.StatusOK, userToDTO(updatedUser))
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found")
	default:
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
