package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptDecline(t *testing.T) {
	for _, s := range []Status{StatusInvited, StatusSelected} {
		next, err := Accept(s)
		require.NoError(t, err, "accept from %s", s)
		assert.Equal(t, StatusAccepted, next)

		next, err = Decline(s)
		require.NoError(t, err, "decline from %s", s)
		assert.Equal(t, StatusDeclined, next)
	}

	// stale attempts outside the pending states must be rejected
	for _, s := range []Status{StatusWaiting, StatusAccepted, StatusDeclined, StatusCancelled} {
		_, err := Accept(s)
		assert.ErrorIs(t, err, ErrNotPending, "accept from %s", s)
		_, err = Decline(s)
		assert.ErrorIs(t, err, ErrNotPending, "decline from %s", s)
	}
}

func TestLeave(t *testing.T) {
	cases := []struct {
		from      Status
		freesSlot bool
	}{
		{StatusWaiting, false},
		{StatusInvited, false},
		{StatusSelected, false},
		{StatusAccepted, true},
	}
	for _, tc := range cases {
		next, freed, err := Leave(tc.from)
		require.NoError(t, err, "leave from %s", tc.from)
		assert.Equal(t, StatusCancelled, next)
		assert.Equal(t, tc.freesSlot, freed, "leave from %s", tc.from)
	}

	for _, s := range []Status{StatusDeclined, StatusCancelled} {
		_, _, err := Leave(s)
		assert.ErrorIs(t, err, ErrNotLeavable, "leave from %s", s)
	}
}

func TestCanRemove(t *testing.T) {
	assert.NoError(t, CanRemove(StatusAccepted))
	for _, s := range []Status{StatusWaiting, StatusInvited, StatusSelected, StatusDeclined, StatusCancelled} {
		assert.ErrorIs(t, CanRemove(s), ErrNotAccepted, "remove from %s", s)
	}
}

func TestTerminalAndActive(t *testing.T) {
	assert.True(t, Terminal(StatusDeclined))
	assert.True(t, Terminal(StatusCancelled))
	for _, s := range []Status{StatusWaiting, StatusInvited, StatusSelected, StatusAccepted} {
		assert.False(t, Terminal(s), "%s", s)
		assert.True(t, Active(s), "%s", s)
	}
	// unknown statuses stay visible rather than silently disappearing
	assert.True(t, Active(Status("SHORTLISTED")))
}

func TestBadgeMappingIsTotal(t *testing.T) {
	// every known status has an explicit badge row
	for _, s := range KnownStatuses {
		b := BadgeFor(s)
		assert.NotEmpty(t, b.Label, "%s", s)
		assert.NotEqual(t, "Unknown", b.Label, "%s must not fall through to the unknown badge", s)
	}
	// the mapping table holds exactly the known set, nothing extra
	assert.Len(t, badges, len(KnownStatuses))

	// a sentinel future status maps to the explicit Unknown badge
	b := BadgeFor(Status("SHORTLISTED"))
	assert.Equal(t, "Unknown", b.Label)
}

func TestActionsFor(t *testing.T) {
	for _, s := range []Status{StatusInvited, StatusSelected} {
		a := ActionsFor(s, false)
		assert.True(t, a.ShowAccept, "%s", s)
		assert.True(t, a.ShowDecline, "%s", s)
		assert.True(t, a.ShowEventDetails)
	}
	for _, s := range []Status{StatusWaiting, StatusAccepted, StatusDeclined, StatusCancelled} {
		a := ActionsFor(s, false)
		assert.False(t, a.ShowAccept, "%s", s)
		assert.False(t, a.ShowDecline, "%s", s)
		assert.True(t, a.ShowEventDetails, "event details stays visible for %s", s)
	}

	// an in-flight operation disables the decision buttons even while pending
	a := ActionsFor(StatusSelected, true)
	assert.False(t, a.ShowAccept)
	assert.False(t, a.ShowDecline)
	assert.True(t, a.Processing)
	assert.True(t, a.ShowEventDetails)
}
