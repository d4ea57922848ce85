package birthday

import (
	"fmt"
	"time"

	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	"github.com/google/uuid"
)

// DateLayout is the wire format of a date of birth.
const DateLayout = validation.DateLayout

type Birthday struct {
	Id      uuid.UUID
	OwnerId uuid.UUID
	Name    string
	// DateOfBirth is a calendar date at midnight UTC. The year may be a placeholder.
	DateOfBirth time.Time
	Notes       string
	CreatedAt   time.Time
}

type UpcomingBirthday struct {
	Birthday       Birthday
	NextOccurrence time.Time
	DaysUntil      int
	TurningAge     int
}

func ParseDate(s string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if date.Year() < 1 {
		return time.Time{}, fmt.Errorf("invalid date %q: year must be 1 or later", s)
	}
	return date, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
