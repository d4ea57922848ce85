package feed

import (
	"errors"
	"net/http"

	ical "github.com/arran4/golang-ical"
	"github.com/birthdayreminder/birthdayreminder/internal/config"
	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/ics"
	"github.com/birthdayreminder/birthdayreminder/pkg/invite"
	log "github.com/sirupsen/logrus"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	// CacheControl keeps clients polling while shared caches may hold the feed for an hour.
	CacheControl = "max-age=0, s-maxage=3600"
)

type Handler struct {
	invites   invite.Service
	birthdays birthday.Service
	bus       *event_bus.EventBus
	calendar  config.Calendar
	clock     utils.Clock
}

func NewHandler(invites invite.Service, birthdays birthday.Service, bus *event_bus.EventBus, calendar config.Calendar, clock utils.Clock) *Handler {
	return &Handler{
		invites:   invites,
		birthdays: birthdays,
		bus:       bus,
		calendar:  calendar,
		clock:     clock,
	}
}

// Calendar godoc
// @Summary Calendar subscription feed
// @Description Live ICS feed of the invite owner's birthdays, for webcal:// subscriptions
// @Tags Calendar
// @Produce text/calendar
// @Param token query string true "Invite code"
// @Success 200 {string} string "ICS document"
// @Failure 400 {object} rest.ErrorResponse "Missing token parameter"
// @Failure 404 {object} rest.ErrorResponse "Invalid token"
// @Failure 500 {object} rest.ErrorResponse "Failed to fetch birthdays"
// @Router /api/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing token parameter")
		return
	}

	resolved, err := h.invites.Resolve(r.Context(), token)
	if errors.Is(err, invite.ErrInviteNotFound) {
		log.Debug("calendar feed requested with unknown token")
		rest.WriteError(w, http.StatusNotFound, "Invalid token")
		return
	}
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	birthdays, err := h.birthdays.GetAllForOwner(r.Context(), resolved.OwnerId)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := ics.Build(birthdays, ics.Options{
		Name:        h.calendar.Name,
		Description: h.calendar.Description,
		Method:      ical.MethodPublish,
		Now:         h.clock.Now(),
	})
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = h.bus.Publish(event_bus.NewEvent(r.Context(), event_bus.CalendarFeedServedType, event_bus.CalendarFeedServed{
		OwnerId: resolved.OwnerId,
		Events:  len(birthdays),
	}))
	if err != nil {
		log.Errorf("failed to publish calendar feed event: %v", err)
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", CacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}
