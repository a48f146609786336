package worker

import (
	"context"
	"time"

	"ssemi/internal/app/service"

	"github.com/rs/zerolog"
)

// ReminderWorker periodically generates reminder notifications for
// correction requests that have sat pending too long. One run fires
// immediately on start, then every interval until the context is cancelled.
type ReminderWorker struct {
	notifications *service.NotificationService
	interval      time.Duration
	log           zerolog.Logger
}

func NewReminderWorker(notifications *service.NotificationService, interval time.Duration, log zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{notifications: notifications, interval: interval, log: log}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("reminder worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("reminder worker stopping")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	created, err := w.notifications.GenerateReminders(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("reminder generation failed")
		return
	}
	if created > 0 {
		w.log.Info().Int("created", created).Msg("reminders generated")
	}
}
