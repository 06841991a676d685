// Package worker runs background maintenance jobs on a gocron scheduler.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
)

// DeadlineReminder periodically sweeps for entrants who were drawn but have
// neither accepted nor declined, and writes them a DEADLINE notification
// once per entry.  The sweep is idempotent: an entry that already has a
// DEADLINE card is skipped, so restarts and overlapping runs never double
// remind.
type DeadlineReminder struct {
	Events        *repository.EventRepo
	Waitlists     *repository.WaitlistRepo
	Notifications *repository.NotificationRepo

	// RemindAfter is how long an entry may sit pending before it earns a
	// reminder.  SweepEvery is the scheduler interval.
	RemindAfter time.Duration
	SweepEvery  time.Duration
}

// NewDeadlineReminder constructs a reminder sweep with sane defaults:
// remind after 24 hours of inaction, sweeping every 10 minutes.
func NewDeadlineReminder(events *repository.EventRepo, waitlists *repository.WaitlistRepo, notifications *repository.NotificationRepo) *DeadlineReminder {
	if events == nil || waitlists == nil || notifications == nil {
		panic("nil repository passed to NewDeadlineReminder")
	}
	return &DeadlineReminder{
		Events:        events,
		Waitlists:     waitlists,
		Notifications: notifications,
		RemindAfter:   24 * time.Hour,
		SweepEvery:    10 * time.Minute,
	}
}

// deadlineNotification builds the reminder card for a pending entry.
func deadlineNotification(entry *model.WaitlistEntry, eventTitle string) model.Notification {
	return model.Notification{
		UserID:  entry.UserID,
		EventID: entry.EventID,
		EntryID: entry.ID,
		Kind:    model.NotificationDeadline,
		Title:   "Your spot is waiting",
		Body: fmt.Sprintf("You were selected for \"%s\" but haven't responded yet. Accept or decline before the event fills up.",
			eventTitle),
	}
}

// Start registers the sweep on a new scheduler and starts it.  The
// scheduler runs until the process exits.
func (w *DeadlineReminder) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("new scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(w.SweepEvery),
		gocron.NewTask(w.Sweep),
	); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	sched.Start()
	return nil
}

// Sweep performs one reminder pass.  Failures on individual entries are
// logged and skipped so one bad row cannot stall the rest.
func (w *DeadlineReminder) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.RemindAfter)
	pending, err := w.Waitlists.ListPendingDecisionsBefore(ctx, cutoff)
	if err != nil {
		log.Printf("deadline-reminder: list pending failed: %v", err)
		return
	}
	for i := range pending {
		entry := &pending[i]
		already, err := w.Notifications.ExistsForEntry(ctx, entry.ID, model.NotificationDeadline)
		if err != nil {
			log.Printf("deadline-reminder: lookup for entry %d failed: %v", entry.ID, err)
			continue
		}
		if already {
			continue
		}
		ev, err := w.Events.GetByID(ctx, entry.EventID)
		if err != nil {
			log.Printf("deadline-reminder: event %d for entry %d failed: %v", entry.EventID, entry.ID, err)
			continue
		}
		n := deadlineNotification(entry, ev.Title)
		if err := w.Notifications.Create(ctx, &n); err != nil {
			log.Printf("deadline-reminder: notification for entry %d failed: %v", entry.ID, err)
		}
	}
}
