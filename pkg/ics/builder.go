package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const (
	productId = "-//BirthdayReminder//Birthday Calendar//EN"
	uidDomain = "birthdayreminder"

	// floatingLayout is a DATE-TIME without zone designator, interpreted in the
	// subscriber's own time zone.
	floatingLayout = "20060102T150405"

	reminderHour  = 9
	eventDuration = time.Hour
)

var yearly = (&rrule.ROption{Freq: rrule.YEARLY}).RRuleString()

type Options struct {
	Name        string
	Description string
	// Method is PUBLISH for subscription feeds and REQUEST for emailed invitations.
	Method ical.Method
	// OrganizerEmail is set as organizer and sole attendee when Method is REQUEST.
	OrganizerEmail string
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now time.Time
}

// Build renders one yearly recurring event per birthday. Records without a
// date of birth are skipped.
func Build(records []birthday.Birthday, opts Options) (string, error) {
	if opts.Method == "" {
		opts.Method = ical.MethodPublish
	}
	if opts.Method == ical.MethodRequest && opts.OrganizerEmail == "" {
		return "", fmt.Errorf("organizer email is required for method %s", opts.Method)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productId)
	cal.SetMethod(opts.Method)
	cal.SetCalscale("GREGORIAN")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Description != "" {
		cal.SetXWRCalDesc(opts.Description)
	}

	for _, record := range records {
		if record.DateOfBirth.IsZero() {
			log.Warnf("skipping birthday %s without date of birth", record.Id)
			continue
		}
		addEvent(cal, record, opts, now)
	}

	return cal.Serialize(ical.WithNewLineWindows), nil
}

func addEvent(cal *ical.Calendar, record birthday.Birthday, opts Options, now time.Time) {
	y, m, d := record.DateOfBirth.Date()
	start := time.Date(y, m, d, reminderHour, 0, 0, 0, time.UTC)

	event := cal.AddEvent(fmt.Sprintf("%s@%s", record.Id, uidDomain))
	event.SetDtStampTime(now)
	event.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
	event.SetProperty(ical.ComponentPropertyDtEnd, start.Add(eventDuration).Format(floatingLayout))
	event.SetSummary(Summary(record.Name))
	event.SetDescription(Description(record))
	event.AddRrule(yearly)

	if opts.Method == ical.MethodRequest {
		event.SetOrganizer(opts.OrganizerEmail)
		event.AddAttendee(opts.OrganizerEmail)
	}

	alarm := event.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger("PT0S")
	alarm.SetDescription(fmt.Sprintf("Reminder: %s's birthday is today", record.Name))
}

func Summary(name string) string {
	return name + "'s Birthday"
}

// Description returns the trimmed notes, or a greeting when there are none.
func Description(record birthday.Birthday) string {
	if notes := strings.TrimSpace(record.Notes); notes != "" {
		return notes
	}
	return fmt.Sprintf("Wish %s a happy birthday!", record.Name)
}
