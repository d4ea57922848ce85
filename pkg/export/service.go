package export

import (
	"context"
	"fmt"
	"html"

	ical "github.com/arran4/golang-ical"
	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/birthdayreminder/birthdayreminder/internal/mail"
	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/ics"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	Filename     = "birthdays.ics"
	MailSubject  = "Your Birthday Export (.ics)"
	mailTextBody = "Here is your exported birthdays calendar file."
	mailHTMLBody = `<p>Hi,</p>
<p>Attached is your birthday calendar with %d birthday(s) for %s.</p>
<p>Open <strong>birthdays.ics</strong> to add them to your calendar. Each birthday repeats yearly with a reminder on the day.</p>
<p>These birthdays have been moved to your export history.</p>
<p>BirthdayReminder</p>`
)

// Result reports the outcome of each best-effort step. Count is zero when there was nothing to export.
type Result struct {
	Calendar string
	Count    int
	Emailed  bool
	Archived bool
	Deleted  bool
}

type Service interface {
	// Export emails the current user's birthdays as an ICS file, archives them and removes them from the live list.
	Export(ctx context.Context) (Result, error)
	ListExported(ctx context.Context) ([]ExportedBirthday, error)
}

type ServiceImpl struct {
	birthdays birthday.Repository
	archive   ArchiveRepository
	mailer    mail.Mailer
	bus       *event_bus.EventBus
	clock     utils.Clock
}

func NewService(birthdays birthday.Repository, archive ArchiveRepository, mailer mail.Mailer, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		birthdays: birthdays,
		archive:   archive,
		mailer:    mailer,
		bus:       bus,
		clock:     clock,
	}
}

func (s *ServiceImpl) Export(ctx context.Context) (Result, error) {
	owner, err := user.CurrentUser(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get current user: %w", err)
	}

	records, err := s.birthdays.GetAll(ctx, owner.Id)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		log.Debugf("nothing to export for user %s", owner.Id)
		return Result{}, nil
	}

	now := s.clock.Now()
	doc, err := ics.Build(records, ics.Options{
		Name:           owner.Email + "'s Birthdays",
		Method:         ical.MethodRequest,
		OrganizerEmail: owner.Email,
		Now:            now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to build calendar: %w", err)
	}
	result := Result{Calendar: doc, Count: len(records)}

	// Every step below is best-effort: failures are logged and the pipeline continues.
	// Steps outlive a disconnected client so each one succeeds or fails on its own.
	stepCtx := context.WithoutCancel(ctx)
	err = s.mailer.Send(stepCtx, mail.Message{
		To:       owner.Email,
		Subject:  MailSubject,
		TextBody: mailTextBody,
		HTMLBody: fmt.Sprintf(mailHTMLBody, len(records), html.EscapeString(owner.Email)),
		Attachments: []mail.Attachment{{
			Filename:    Filename,
			ContentType: "text/calendar; charset=utf-8; method=REQUEST",
			Content:     []byte(doc),
		}},
	})
	if err != nil {
		log.Errorf("export for user %s: mail error: %v", owner.Id, err)
	} else {
		result.Emailed = true
	}

	if err := s.archive.Archive(stepCtx, records, now); err != nil {
		log.Errorf("export for user %s: archive error: %v", owner.Id, err)
	} else {
		result.Archived = true
	}

	deleted, err := s.birthdays.DeleteByIds(stepCtx, owner.Id, ids(records))
	if err != nil {
		log.Errorf("export for user %s: delete error: %v", owner.Id, err)
	} else {
		result.Deleted = true
		if deleted != len(records) {
			log.Warnf("export for user %s: deleted %d of %d birthdays", owner.Id, deleted, len(records))
		}
	}

	log.Infof("exported %d birthdays for user %s (emailed=%t archived=%t deleted=%t)",
		result.Count, owner.Id, result.Emailed, result.Archived, result.Deleted)

	err = s.bus.Publish(event_bus.NewEvent(stepCtx, event_bus.BirthdaysExportedType, event_bus.BirthdaysExported{
		OwnerId:  owner.Id,
		Count:    result.Count,
		Emailed:  result.Emailed,
		Archived: result.Archived,
		Deleted:  result.Deleted,
	}))
	if err != nil {
		log.Errorf("failed to publish export event: %v", err)
	}
	return result, nil
}

func (s *ServiceImpl) ListExported(ctx context.Context) ([]ExportedBirthday, error) {
	ownerId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.archive.List(ctx, ownerId)
}

func ids(records []birthday.Birthday) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, b := range records {
		out = append(out, b.Id)
	}
	return out
}
