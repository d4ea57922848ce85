package app

import (
	"github.com/birthdayreminder/birthdayreminder/internal/auth"
	"github.com/birthdayreminder/birthdayreminder/internal/config"
	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/birthdayreminder/birthdayreminder/internal/mail"
	"github.com/birthdayreminder/birthdayreminder/internal/metrics"
	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/pkg/birthday"
	"github.com/birthdayreminder/birthdayreminder/pkg/export"
	"github.com/birthdayreminder/birthdayreminder/pkg/feed"
	"github.com/birthdayreminder/birthdayreminder/pkg/invite"
	"github.com/birthdayreminder/birthdayreminder/pkg/sync_status"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator *auth.TokenValidator
	EventBus           *event_bus.EventBus
	Metrics            *metrics.Metrics
	Mailer             mail.Mailer
	Clock              utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	BirthdayRepo    birthday.Repository
	BirthdayService birthday.Service
	BirthdayHandler *birthday.Handler

	InviteService invite.Service
	InviteHandler *invite.Handler

	FeedHandler *feed.Handler

	ExportService export.Service
	ExportHandler *export.Handler

	SyncStatusService sync_status.Service
	SyncStatusHandler *sync_status.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	validator, err := auth.NewTokenValidator(cfg.Auth.JwtSecret, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}
	deps.AuthTokenValidator = validator

	deps.EventBus = event_bus.NewEventBus()
	deps.Metrics = metrics.New()
	deps.Metrics.Subscribe(deps.EventBus)
	deps.Mailer = mail.NewSmtpMailer(cfg.Smtp)
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.BirthdayRepo = birthday.NewRepository(db)
	deps.BirthdayService = birthday.NewService(deps.BirthdayRepo, deps.EventBus, deps.Clock)
	deps.BirthdayHandler = birthday.NewHandler(deps.BirthdayService)

	deps.InviteService = invite.NewService(invite.NewRepository(db), deps.BirthdayService)
	deps.InviteHandler = invite.NewHandler(deps.InviteService, cfg.Host)

	deps.FeedHandler = feed.NewHandler(deps.InviteService, deps.BirthdayService, deps.EventBus, cfg.Calendar, deps.Clock)

	deps.ExportService = export.NewService(deps.BirthdayRepo, export.NewArchiveRepository(db), deps.Mailer, deps.EventBus, deps.Clock)
	deps.ExportHandler = export.NewHandler(deps.ExportService)

	deps.SyncStatusService = sync_status.NewService(sync_status.NewRepository(db), deps.Clock)
	deps.SyncStatusHandler = sync_status.NewHandler(deps.SyncStatusService)

	return deps, nil
}
