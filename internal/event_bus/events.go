package event_bus

import (
	"github.com/google/uuid"
)

const (
	BirthdaysExportedType  EventType = "birthdays.exported"
	BirthdaySubmittedType  EventType = "birthday.submitted"
	CalendarFeedServedType EventType = "calendar.feed_served"
)

// BirthdaysExported reports the outcome of each best-effort export step.
type BirthdaysExported struct {
	OwnerId  uuid.UUID
	Count    int
	Emailed  bool
	Archived bool
	Deleted  bool
}

type BirthdaySubmitted struct {
	OwnerId    uuid.UUID
	BirthdayId uuid.UUID
	ViaInvite  bool
}

type CalendarFeedServed struct {
	OwnerId uuid.UUID
	Events  int
}
