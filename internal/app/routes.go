package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Birthdays
	r.HandleFunc("/api/birthday", deps.BirthdayHandler.List).Methods("GET")
	r.HandleFunc("/api/birthday", deps.BirthdayHandler.Create).Methods("POST")
	r.HandleFunc("/api/birthday/upcoming", deps.BirthdayHandler.Upcoming).Methods("GET")
	r.HandleFunc("/api/birthday/{id}", deps.BirthdayHandler.Get).Methods("GET")
	r.HandleFunc("/api/birthday/{id}", deps.BirthdayHandler.Update).Methods("PUT")
	r.HandleFunc("/api/birthday/{id}", deps.BirthdayHandler.Delete).Methods("DELETE")

	// Invites
	r.HandleFunc("/api/invite", deps.InviteHandler.Create).Methods("POST")
	r.HandleFunc("/api/invite/submit", deps.InviteHandler.Submit).Methods("POST")
	r.HandleFunc("/api/invite/{code}", deps.InviteHandler.Check).Methods("GET")

	// Calendar subscription
	r.HandleFunc("/api/calendar", deps.FeedHandler.Calendar).Methods("GET")
	r.HandleFunc("/api/sync", deps.SyncStatusHandler.Get).Methods("GET")
	r.HandleFunc("/api/sync", deps.SyncStatusHandler.MarkSynced).Methods("PUT")

	// Export
	r.HandleFunc("/api/export", deps.ExportHandler.Export).Methods("POST")
	r.HandleFunc("/api/exported", deps.ExportHandler.ListExported).Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
}
