package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
)

func TestDeadlineNotification(t *testing.T) {
	entry := &model.WaitlistEntry{ID: 31, EventID: 5, UserID: 77}

	n := deadlineNotification(entry, "Harbor Concert")
	assert.Equal(t, model.NotificationDeadline, n.Kind)
	assert.Equal(t, uint64(77), n.UserID)
	assert.Equal(t, uint64(5), n.EventID)
	assert.Equal(t, uint64(31), n.EntryID)
	assert.Contains(t, n.Body, "Harbor Concert")
	assert.Contains(t, n.Body, "haven't responded")
}

func TestNewDeadlineReminderDefaults(t *testing.T) {
	w := NewDeadlineReminder(
		repository.NewEventRepo(nil),
		repository.NewWaitlistRepo(nil),
		repository.NewNotificationRepo(nil),
	)
	assert.Equal(t, 24*time.Hour, w.RemindAfter)
	assert.Equal(t, 10*time.Minute, w.SweepEvery)
}
