package utils

import "sync"

// FlightGuard is a per-key single-flight guard. It prevents duplicate
// submission of the same asynchronous action (for example, two taps on
// Accept for one notification) while a prior one is still in flight.
// Different keys proceed independently; a single key never has two
// outstanding operations.
//
// Usage:
//
//	if !guard.TryAcquire(id) {
//	    // a prior operation for id is still running; suppress, don't queue
//	}
//	defer guard.Release(id)
//
// Release must run unconditionally, on success and failure alike, or the
// key stays locked forever.
type FlightGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewFlightGuard returns an empty guard.
func NewFlightGuard() *FlightGuard {
	return &FlightGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire claims the key if no operation for it is in flight. It returns
// false when the key is already held; the caller must then drop the request
// rather than queue it.
func (g *FlightGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[key]; held {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

// Release frees the key. Releasing a key that is not held is a no-op.
func (g *FlightGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}

// Held reports whether an operation for the key is currently in flight.
// Used to surface a processing flag on notification responses.
func (g *FlightGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.inFlight[key]
	return held
}
