package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC)

func record(t *testing.T, name, dateOfBirth, notes string) birthday.Birthday {
	t.Helper()
	date, err := birthday.ParseDate(dateOfBirth)
	require.NoError(t, err)
	return birthday.Birthday{Id: uuid.New(), OwnerId: uuid.New(), Name: name, DateOfBirth: date, Notes: notes}
}

func parse(t *testing.T, doc string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	require.NoError(t, err)
	return cal
}

func calendarProperty(cal *ical.Calendar, name ical.Property) string {
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == string(name) {
			return p.Value
		}
	}
	return ""
}

func value(e *ical.VEvent, property ical.ComponentProperty) string {
	p := e.GetProperty(property)
	if p == nil {
		return ""
	}
	return p.Value
}

func alarmValue(a *ical.VAlarm, property ical.ComponentProperty) string {
	p := a.GetProperty(property)
	if p == nil {
		return ""
	}
	return p.Value
}

func TestBuild_Event(t *testing.T) {
	// given
	ana := record(t, "Ana", "1990-04-12", "")

	// when
	doc, err := Build([]birthday.Birthday{ana}, Options{Name: "Birthday Reminders", Description: "Live feed", Now: stamp})

	// then
	require.NoError(t, err)
	cal := parse(t, doc)
	assert.Equal(t, "PUBLISH", calendarProperty(cal, ical.PropertyMethod))
	assert.Equal(t, "Birthday Reminders", calendarProperty(cal, ical.PropertyXWRCalName))
	assert.Equal(t, "Live feed", calendarProperty(cal, ical.PropertyXWRCalDesc))

	events := cal.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, ana.Id.String()+"@birthdayreminder", event.Id())
	assert.Equal(t, "Ana's Birthday", value(event, ical.ComponentPropertySummary))
	assert.Equal(t, "Wish Ana a happy birthday!", value(event, ical.ComponentPropertyDescription))
	assert.Equal(t, "19900412T090000", value(event, ical.ComponentPropertyDtStart))
	assert.Equal(t, "19900412T100000", value(event, ical.ComponentPropertyDtEnd))
	assert.Equal(t, "20260410T120000Z", value(event, ical.ComponentPropertyDtstamp))
	assert.Nil(t, event.GetProperty(ical.ComponentPropertyOrganizer))
	assert.Empty(t, event.Attendees())

	alarms := event.Alarms()
	require.Len(t, alarms, 1)
	assert.Equal(t, "DISPLAY", alarmValue(alarms[0], ical.ComponentPropertyAction))
	assert.Equal(t, "PT0S", alarmValue(alarms[0], ical.ComponentPropertyTrigger))
	assert.Equal(t, "Reminder: Ana's birthday is today", alarmValue(alarms[0], ical.ComponentPropertyDescription))
}

func TestBuild_RecurrenceIsYearlyAndUnbounded(t *testing.T) {
	records := []birthday.Birthday{
		record(t, "Ana", "1990-04-12", ""),
		record(t, "Ben", "1985-12-01", "Call him"),
		record(t, "Leap", "2000-02-29", ""),
	}

	doc, err := Build(records, Options{Now: stamp})

	require.NoError(t, err)
	events := parse(t, doc).Events()
	require.Len(t, events, 3)
	for _, event := range events {
		rules := event.GetProperties(ical.ComponentPropertyRrule)
		require.Len(t, rules, 1)
		assert.Equal(t, "FREQ=YEARLY", rules[0].Value)
		assert.NotContains(t, rules[0].Value, "COUNT")
		assert.NotContains(t, rules[0].Value, "UNTIL")
	}
}

func TestBuild_EmptyCalendar(t *testing.T) {
	doc, err := Build(nil, Options{Name: "Birthday Reminders", Now: stamp})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR"))
	assert.Contains(t, doc, "END:VCALENDAR")
	assert.NotContains(t, doc, "BEGIN:VEVENT")
	assert.Empty(t, parse(t, doc).Events())
}

func TestBuild_Description(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{name: "empty notes", notes: "", want: "Wish Cleo a happy birthday!"},
		{name: "whitespace notes", notes: "  \t ", want: "Wish Cleo a happy birthday!"},
		{name: "notes are trimmed", notes: "  Loves jazz ", want: "Loves jazz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Build([]birthday.Birthday{record(t, "Cleo", "2001-07-30", tt.notes)}, Options{Now: stamp})

			require.NoError(t, err)
			events := parse(t, doc).Events()
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, value(events[0], ical.ComponentPropertyDescription))
		})
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	records := []birthday.Birthday{
		record(t, "Ana", "1990-04-12", ""),
		record(t, "Ben", "1985-12-01", "Call him"),
	}

	first, err := Build(records, Options{Name: "Birthday Reminders", Now: stamp})
	require.NoError(t, err)
	second, err := Build(records, Options{Name: "Birthday Reminders", Now: stamp.Add(time.Hour)})
	require.NoError(t, err)

	withoutStamp := func(doc string) string {
		lines := strings.Split(doc, "\r\n")
		kept := lines[:0]
		for _, line := range lines {
			if !strings.HasPrefix(line, "DTSTAMP:") {
				kept = append(kept, line)
			}
		}
		return strings.Join(kept, "\r\n")
	}
	assert.Equal(t, withoutStamp(first), withoutStamp(second))
	assert.NotEqual(t, first, second)
}

func TestBuild_LineEndings(t *testing.T) {
	// given
	long := record(t, strings.Repeat("Žofia Ångström-", 6), "1990-04-12", "Ünïcödé notes that run well past one content line")

	// when
	doc, err := Build([]birthday.Birthday{long}, Options{Name: "Birthday Reminders", Now: stamp})

	// then
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(doc, "END:VCALENDAR\r\n"))
	assert.NotContains(t, strings.ReplaceAll(doc, "\r\n", ""), "\n")
	for _, line := range strings.Split(strings.TrimSuffix(doc, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, "line too long: %q", line)
	}
}

func TestBuild_Request(t *testing.T) {
	t.Run("should set organizer and attendee", func(t *testing.T) {
		doc, err := Build([]birthday.Birthday{record(t, "Ana", "1990-04-12", "")}, Options{
			Method:         ical.MethodRequest,
			OrganizerEmail: "u1@example.com",
			Now:            stamp,
		})

		require.NoError(t, err)
		cal := parse(t, doc)
		assert.Equal(t, "REQUEST", calendarProperty(cal, ical.PropertyMethod))
		event := cal.Events()[0]
		assert.Equal(t, "mailto:u1@example.com", value(event, ical.ComponentPropertyOrganizer))
		attendees := event.Attendees()
		require.Len(t, attendees, 1)
		assert.Equal(t, "u1@example.com", attendees[0].Email())
	})

	t.Run("should require organizer email", func(t *testing.T) {
		_, err := Build(nil, Options{Method: ical.MethodRequest})
		assert.Error(t, err)
	})
}

func TestBuild_SkipsMissingDate(t *testing.T) {
	records := []birthday.Birthday{
		{Id: uuid.New(), Name: "Nobody"},
		record(t, "Ana", "1990-04-12", ""),
	}

	doc, err := Build(records, Options{Now: stamp})

	require.NoError(t, err)
	events := parse(t, doc).Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Ana's Birthday", value(events[0], ical.ComponentPropertySummary))
}
