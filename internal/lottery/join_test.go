package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func openGate() JoinGate {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return JoinGate{
		RegistrationStart: now.Add(-24 * time.Hour),
		RegistrationEnd:   now.Add(24 * time.Hour),
		EventStart:        now.Add(48 * time.Hour),
		WaitingCount:      3,
		WaitlistCapacity:  10,
	}
}

func TestJoinGate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("open window admits", func(t *testing.T) {
		assert.NoError(t, openGate().Check(now, nil, nil))
	})

	t.Run("before registration opens", func(t *testing.T) {
		g := openGate()
		g.RegistrationStart = now.Add(time.Hour)
		assert.ErrorIs(t, g.Check(now, nil, nil), ErrRegistrationClosed)
	})

	t.Run("after registration closes", func(t *testing.T) {
		g := openGate()
		g.RegistrationEnd = now.Add(-time.Minute)
		assert.ErrorIs(t, g.Check(now, nil, nil), ErrRegistrationClosed)
	})

	t.Run("event already started", func(t *testing.T) {
		g := openGate()
		g.EventStart = now.Add(-time.Minute)
		assert.ErrorIs(t, g.Check(now, nil, nil), ErrEventStarted)
	})

	t.Run("waitlist at capacity", func(t *testing.T) {
		g := openGate()
		g.WaitingCount = 10
		assert.ErrorIs(t, g.Check(now, nil, nil), ErrWaitlistFull)
	})

	t.Run("zero waitlist capacity means unbounded", func(t *testing.T) {
		g := openGate()
		g.WaitlistCapacity = 0
		g.WaitingCount = 5000
		assert.NoError(t, g.Check(now, nil, nil))
	})
}

func TestJoinGate_Geolocation(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lat, lon := 53.52, -113.52

	g := openGate()
	g.RequiresGeolocation = true

	// a missing fix is a hard error, not a silent omission
	assert.ErrorIs(t, g.Check(now, nil, nil), ErrLocationRequired)
	assert.ErrorIs(t, g.Check(now, &lat, nil), ErrLocationRequired)
	assert.ErrorIs(t, g.Check(now, nil, &lon), ErrLocationRequired)

	assert.NoError(t, g.Check(now, &lat, &lon))

	// events without the requirement ignore coordinates entirely
	g.RequiresGeolocation = false
	assert.NoError(t, g.Check(now, nil, nil))
}
