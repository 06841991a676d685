package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-lottery/internal/model"
)

func TestSelectedEventPayload(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ev := EntrantSelectedEvent{
		EventID:    7,
		EventTitle: "City Marathon",
		EntryID:    42,
		UserID:     9,
		UserName:   "Riley",
		Wave:       2,
		DrawSize:   5,
		SelectedAt: ts,
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var back EntrantSelectedEvent
	require.NoError(t, json.Unmarshal(body, &back))
	assert.True(t, back.SelectedAt.Equal(ts))
	assert.Contains(t, string(body), `"selected_at":"2026-08-30T12:00:00Z"`)
}

func TestSelectedNotification(t *testing.T) {
	n := selectedNotification(EntrantSelectedEvent{
		EventID:    7,
		EventTitle: "City Marathon",
		EntryID:    42,
		UserID:     9,
		Wave:       2,
	})

	assert.Equal(t, model.NotificationSelected, n.Kind)
	assert.Equal(t, uint64(9), n.UserID)
	assert.Equal(t, uint64(7), n.EventID)
	assert.Equal(t, uint64(42), n.EntryID)
	assert.Contains(t, n.Body, "wave 2")
	assert.Contains(t, n.Body, "City Marathon")
}

func TestReplacementNotifications(t *testing.T) {
	removed := EntrantRemovedEvent{
		EventID:    7,
		EventTitle: "City Marathon",
		EntryID:    42,
		UserID:     9,
		RemovedAt:  time.Now().UTC(),
	}
	waiting := []model.WaitlistEntry{
		{ID: 51, EventID: 7, UserID: 21},
		{ID: 52, EventID: 7, UserID: 22},
		{ID: 53, EventID: 7, UserID: 23},
	}

	out := replacementNotifications(removed, waiting)
	require.Len(t, out, 3)
	for i, n := range out {
		assert.Equal(t, model.NotificationReplacement, n.Kind)
		assert.Equal(t, waiting[i].UserID, n.UserID)
		assert.Equal(t, waiting[i].ID, n.EntryID)
		assert.Equal(t, uint64(7), n.EventID)
		assert.Contains(t, n.Body, "City Marathon")
	}
}

func TestReplacementNotifications_NobodyWaiting(t *testing.T) {
	out := replacementNotifications(EntrantRemovedEvent{EventID: 7}, nil)
	assert.Empty(t, out)
}
