package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-lottery/internal/model"
)

func TestNotSelectedNotifications(t *testing.T) {
	waiting := []model.WaitlistEntry{
		{ID: 11, EventID: 3, UserID: 101},
		{ID: 12, EventID: 3, UserID: 102},
	}

	out := notSelectedNotifications(3, "Rooftop Screening", 1, waiting)
	require.Len(t, out, 2)
	for i, n := range out {
		assert.Equal(t, model.NotificationNotSelected, n.Kind)
		assert.Equal(t, waiting[i].UserID, n.UserID)
		assert.Equal(t, waiting[i].ID, n.EntryID)
		assert.Equal(t, uint64(3), n.EventID)
		assert.Contains(t, n.Body, "wave 1")
		assert.Contains(t, n.Body, "still on the waiting list")
	}
}

func TestNotSelectedNotifications_EveryoneWon(t *testing.T) {
	assert.Empty(t, notSelectedNotifications(3, "Rooftop Screening", 1, nil))
}

func TestWaitlistJoinedNotification(t *testing.T) {
	entry := &model.WaitlistEntry{ID: 11, EventID: 3, UserID: 101, Position: 7}

	n := waitlistJoinedNotification(entry, "Rooftop Screening")
	assert.Equal(t, model.NotificationWaitlist, n.Kind)
	assert.Equal(t, uint64(101), n.UserID)
	assert.Equal(t, uint64(3), n.EventID)
	assert.Equal(t, uint64(11), n.EntryID)
	assert.Contains(t, n.Body, "position 7")
	assert.Contains(t, n.Body, "Rooftop Screening")
}
