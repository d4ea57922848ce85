package metrics

import (
	"net/http"

	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// ExportSteps counts export pipeline steps by step (email|archive|delete) and result (success|failure).
	ExportSteps *prometheus.CounterVec
	// ExportedBirthdays counts birthdays moved to the archive by export runs.
	ExportedBirthdays prometheus.Counter
	// SubmittedBirthdays counts birthdays created, by source (owner|invite).
	SubmittedBirthdays *prometheus.CounterVec
	// FeedRequests counts calendar feeds served.
	FeedRequests prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		ExportSteps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthdays_export_steps_total",
				Help: "Total number of export pipeline steps by outcome",
			},
			[]string{"step", "result"},
		),
		ExportedBirthdays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthdays_exported_total",
			Help: "Total number of birthdays included in exports",
		}),
		SubmittedBirthdays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthdays_submitted_total",
				Help: "Total number of birthdays created",
			},
			[]string{"source"},
		),
		FeedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthdays_calendar_feed_requests_total",
			Help: "Total number of calendar subscription feeds served",
		}),
	}
	registry.MustRegister(
		m.ExportSteps,
		m.ExportedBirthdays,
		m.SubmittedBirthdays,
		m.FeedRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Subscribe records domain events published on bus.
func (m *Metrics) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.BirthdaysExportedType, func(e event_bus.EventT[event_bus.BirthdaysExported]) error {
		m.ExportedBirthdays.Add(float64(e.Data.Count))
		m.ExportSteps.WithLabelValues("email", result(e.Data.Emailed)).Inc()
		m.ExportSteps.WithLabelValues("archive", result(e.Data.Archived)).Inc()
		m.ExportSteps.WithLabelValues("delete", result(e.Data.Deleted)).Inc()
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.BirthdaySubmittedType, func(e event_bus.EventT[event_bus.BirthdaySubmitted]) error {
		source := "owner"
		if e.Data.ViaInvite {
			source = "invite"
		}
		m.SubmittedBirthdays.WithLabelValues(source).Inc()
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarFeedServedType, func(e event_bus.EventT[event_bus.CalendarFeedServed]) error {
		m.FeedRequests.Inc()
		return nil
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
